package composer

import "fmt"

// ValidationResult maps account id to a list of human-readable violations.
// An absent or empty list means the account is compatible with the attached
// media. Violations are advisory: the operator may acknowledge and proceed,
// with incompatible accounts skipped downstream.
type ValidationResult map[int64][]string

// ValidateMedia evaluates the media set against each selected account's
// platform limits. Recomputed on demand, never persisted.
func ValidateMedia(media *MediaSet, sel *VariantSelector) ValidationResult {
	result := make(ValidationResult)
	for _, accountID := range sel.SelectedAccounts() {
		acc, ok := sel.AccountByID(accountID)
		if !ok {
			continue
		}
		violations := validateAccount(media, sel, acc)
		if len(violations) > 0 {
			result[accountID] = violations
		}
	}
	return result
}

func validateAccount(media *MediaSet, sel *VariantSelector, acc Account) []string {
	var violations []string

	l, ok := LimitsFor(acc.PlatformID)
	if ok {
		violations = append(violations, validateCounts(media, acc.PlatformID, l)...)
		for _, item := range media.Items() {
			violations = append(violations, validateItem(item, acc.PlatformID, l)...)
		}
	}

	for _, postTypeID := range sel.Selected(acc.ID) {
		d, ok := Descriptor(acc.PlatformID, postTypeID)
		if !ok {
			continue
		}
		violations = append(violations, validateDescriptor(media, d)...)
	}

	return violations
}

func validateCounts(media *MediaSet, platformID string, l PlatformLimits) []string {
	var violations []string
	if n := media.CountKind(MediaKindImage); l.MaxImages > 0 && n > l.MaxImages {
		violations = append(violations,
			fmt.Sprintf("%s allows at most %d images per post, %d attached", platformID, l.MaxImages, n))
	}
	if media.HasImage() && l.MaxImages == 0 && l.MaxVideos > 0 {
		violations = append(violations,
			fmt.Sprintf("%s does not accept image posts", platformID))
	}
	if n := media.CountKind(MediaKindVideo); l.MaxVideos > 0 && n > l.MaxVideos {
		violations = append(violations,
			fmt.Sprintf("%s allows at most %d videos per post, %d attached", platformID, l.MaxVideos, n))
	}
	if l.MaxTotal > 0 && media.Len() > l.MaxTotal {
		violations = append(violations,
			fmt.Sprintf("%s allows at most %d media files per post, %d attached", platformID, l.MaxTotal, media.Len()))
	}
	return violations
}

func validateItem(item MediaItem, platformID string, l PlatformLimits) []string {
	var violations []string
	switch item.Kind {
	case MediaKindImage:
		if l.MaxImageBytes > 0 && item.ByteSize > l.MaxImageBytes {
			violations = append(violations,
				fmt.Sprintf("%s exceeds the %s image size limit of %d bytes", item.FileName, platformID, l.MaxImageBytes))
		}
		if len(l.ImageFormats) > 0 && !containsFormat(l.ImageFormats, item.Extension) {
			violations = append(violations,
				fmt.Sprintf("%s format .%s is not accepted by %s", item.FileName, item.Extension, platformID))
		}
	case MediaKindVideo:
		if l.MaxVideoBytes > 0 && item.ByteSize > l.MaxVideoBytes {
			violations = append(violations,
				fmt.Sprintf("%s exceeds the %s video size limit of %d bytes", item.FileName, platformID, l.MaxVideoBytes))
		}
		if len(l.VideoFormats) > 0 && !containsFormat(l.VideoFormats, item.Extension) {
			violations = append(violations,
				fmt.Sprintf("%s format .%s is not accepted by %s", item.FileName, item.Extension, platformID))
		}
		if l.MaxVideoDuration > 0 && item.DurationSeconds > l.MaxVideoDuration {
			violations = append(violations,
				fmt.Sprintf("%s is longer than the %s maximum of %d seconds", item.FileName, platformID, l.MaxVideoDuration))
		}
	}
	return violations
}

// validateDescriptor reports selections whose media prerequisite is no longer
// met (stale after media removal) and vertical-feed formats holding landscape
// images. Stale selections are kept and surfaced here rather than pruned
// behind the operator's back.
func validateDescriptor(media *MediaSet, d PostTypeDescriptor) []string {
	var violations []string
	key := KeyForDescriptor(d)
	if d.RequiresVideo && !media.HasVideo() {
		violations = append(violations,
			fmt.Sprintf("%s requires a video but none is attached", key))
	}
	if d.RequiresImage && !media.HasImage() {
		violations = append(violations,
			fmt.Sprintf("%s requires an image but none is attached", key))
	}
	if d.VerticalFeed {
		for _, item := range media.Items() {
			if item.Kind == MediaKindImage && item.Landscape() {
				violations = append(violations,
					fmt.Sprintf("%s is a vertical format; landscape image %s may be cropped", key, item.FileName))
			}
		}
	}
	return violations
}

func containsFormat(formats []string, ext string) bool {
	for _, f := range formats {
		if f == ext {
			return true
		}
	}
	return false
}
