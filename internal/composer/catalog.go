package composer

// PostTypeDescriptor describes one publishing mode of a platform and the media
// it needs before it can be targeted.
type PostTypeDescriptor struct {
	PlatformID    string `json:"platform_id"`
	PostTypeID    string `json:"post_type_id"`
	RequiresVideo bool   `json:"requires_video"`
	RequiresImage bool   `json:"requires_image"`
	// VerticalFeed marks formats rendered in a vertical frame, where landscape
	// images get cropped.
	VerticalFeed bool `json:"vertical_feed"`
}

// PlatformLimits are the structural media limits a platform enforces on a
// single post. A zero MaxImages alongside a nonzero MaxVideos marks a
// video-only platform that takes no image posts at all; other zero fields mean
// the limit is not enforced. Formats lists are lowercase extensions.
type PlatformLimits struct {
	MaxImages        int
	MaxVideos        int
	MaxTotal         int
	MaxImageBytes    int64
	MaxVideoBytes    int64
	ImageFormats     []string
	VideoFormats     []string
	MaxVideoDuration int // seconds
}

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformYoutube   = "youtube"
	PlatformTiktok    = "tiktok"
)

var descriptors = []PostTypeDescriptor{
	{PlatformID: PlatformFacebook, PostTypeID: "page"},
	{PlatformID: PlatformFacebook, PostTypeID: "reel", RequiresVideo: true},
	{PlatformID: PlatformInstagram, PostTypeID: "feed", RequiresImage: true, VerticalFeed: true},
	{PlatformID: PlatformInstagram, PostTypeID: "reels", RequiresVideo: true},
	{PlatformID: PlatformYoutube, PostTypeID: "video", RequiresVideo: true},
	{PlatformID: PlatformTiktok, PostTypeID: "video", RequiresVideo: true},
}

const mb = 1 << 20

var limits = map[string]PlatformLimits{
	PlatformFacebook: {
		MaxImages:        10,
		MaxVideos:        1,
		MaxTotal:         10,
		MaxImageBytes:    30 * mb,
		MaxVideoBytes:    1024 * mb,
		ImageFormats:     []string{"jpg", "jpeg", "png"},
		VideoFormats:     []string{"mp4", "mov"},
		MaxVideoDuration: 90 * 60,
	},
	PlatformInstagram: {
		MaxImages:        10,
		MaxVideos:        1,
		MaxTotal:         10,
		MaxImageBytes:    8 * mb,
		MaxVideoBytes:    650 * mb,
		ImageFormats:     []string{"jpg", "jpeg", "png"},
		VideoFormats:     []string{"mp4", "mov"},
		MaxVideoDuration: 15 * 60,
	},
	PlatformYoutube: {
		MaxImages:        0,
		MaxVideos:        1,
		MaxTotal:         1,
		MaxVideoBytes:    2048 * mb,
		VideoFormats:     []string{"mp4", "mov"},
		MaxVideoDuration: 12 * 60 * 60,
	},
	PlatformTiktok: {
		MaxImages:        0,
		MaxVideos:        1,
		MaxTotal:         1,
		MaxVideoBytes:    500 * mb,
		VideoFormats:     []string{"mp4", "mov"},
		MaxVideoDuration: 10 * 60,
	},
}

// Descriptors returns every known (platform, post type) descriptor.
func Descriptors() []PostTypeDescriptor {
	out := make([]PostTypeDescriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// DescriptorsFor returns the descriptors for one platform, in catalog order.
func DescriptorsFor(platformID string) []PostTypeDescriptor {
	var out []PostTypeDescriptor
	for _, d := range descriptors {
		if d.PlatformID == platformID {
			out = append(out, d)
		}
	}
	return out
}

// Descriptor looks up a single (platform, post type) pair.
func Descriptor(platformID, postTypeID string) (PostTypeDescriptor, bool) {
	for _, d := range descriptors {
		if d.PlatformID == platformID && d.PostTypeID == postTypeID {
			return d, true
		}
	}
	return PostTypeDescriptor{}, false
}

// LimitsFor returns the structural limits of a platform.
func LimitsFor(platformID string) (PlatformLimits, bool) {
	l, ok := limits[platformID]
	return l, ok
}

// VariantKey derives the stable identifier joining selection, AI content and
// payload for a (platform, post type) pair. Platforms with a single post type
// key as the bare platform id ("youtube"); others as "platform-posttype"
// ("facebook-page"). Every component must go through this function; there is
// no other legal way to build a key.
func VariantKey(platformID, postTypeID string) string {
	if len(DescriptorsFor(platformID)) == 1 {
		return platformID
	}
	return platformID + "-" + postTypeID
}

// KeyForDescriptor is shorthand for VariantKey over a descriptor.
func KeyForDescriptor(d PostTypeDescriptor) string {
	return VariantKey(d.PlatformID, d.PostTypeID)
}

// DescriptorForKey resolves a variant key back to its descriptor.
func DescriptorForKey(key string) (PostTypeDescriptor, bool) {
	for _, d := range descriptors {
		if KeyForDescriptor(d) == key {
			return d, true
		}
	}
	return PostTypeDescriptor{}, false
}

// KnownKey reports whether key is produced by some catalog descriptor.
func KnownKey(key string) bool {
	_, ok := DescriptorForKey(key)
	return ok
}
