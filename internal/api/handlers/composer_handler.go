package handlers

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/service"
	"github.com/crosspost-app/composer-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type ComposerHandler struct {
	s service.ComposerService
}

func NewComposerHandler(service service.ComposerService) *ComposerHandler {
	return &ComposerHandler{s: service}
}

// sessionView is what every session-mutating route responds with: the full
// session state plus the derived selectability matrix.
type sessionView struct {
	Session  *composer.CompositionSession `json:"session"`
	Variants []composer.VariantView       `json:"variants"`
}

func viewOf(sess *composer.CompositionSession) sessionView {
	return sessionView{Session: sess, Variants: sess.Variants()}
}

func (h *ComposerHandler) CreateSession(c *fiber.Ctx) error {
	sess, err := h.s.CreateSession(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(viewOf(sess))
}

func (h *ComposerHandler) GetSession(c *fiber.Ctx) error {
	sess, err := h.s.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) UpdateDraft(c *fiber.Ctx) error {
	var update transfer.DraftUpdate
	if err := c.BodyParser(&update); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse draft",
		})
	}

	sess, err := h.s.UpdateDraft(c.Context(), c.Params("id"), &update)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) AttachMedia(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files selected",
		})
	}

	// durations arrive as a JSON array matching file order; dimension and
	// duration extraction for videos is the uploader's job
	var durations []int
	if raw := c.FormValue("durations"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &durations); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid durations format",
			})
		}
	}

	sess, err := h.s.AttachMedia(c.Context(), c.Params("id"), files, durations)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) RemoveMedia(c *fiber.Ctx) error {
	var body transfer.MediaRemove
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	sess, err := h.s.RemoveMedia(c.Context(), c.Params("id"), body.MediaID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) ToggleSelection(c *fiber.Ctx) error {
	var body transfer.SelectionToggle
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	decision, sess, err := h.s.ToggleSelection(c.Context(), c.Params("id"), body.AccountID, body.PostTypeID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"decision": decision,
		"pending":  sess.Gate.Pending(),
		"session":  sess,
		"variants": sess.Variants(),
	})
}

func (h *ComposerHandler) ResolveConfirmation(c *fiber.Ctx) error {
	var body transfer.SelectionConfirm
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	sess, err := h.s.ResolveConfirmation(c.Context(), c.Params("id"), body.Accept)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) SelectAll(c *fiber.Ctx) error {
	sess, err := h.s.SelectAll(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"pending":  sess.Gate.Pending(),
		"session":  sess,
		"variants": sess.Variants(),
	})
}

func (h *ComposerHandler) DeselectAll(c *fiber.Ctx) error {
	sess, err := h.s.DeselectAll(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) DiscardContent(c *fiber.Ctx) error {
	var body transfer.ContentDiscard
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	sess, err := h.s.DiscardContent(c.Context(), c.Params("id"), body.VariantKey)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) Validation(c *fiber.Ctx) error {
	result, err := h.s.Validation(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	// stringify account ids so the map survives JSON encoding
	out := make(map[string][]string, len(result))
	for accountID, violations := range result {
		out[strconv.FormatInt(accountID, 10)] = violations
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"violations": out})
}

func (h *ComposerHandler) History(c *fiber.Ctx) error {
	history, err := h.s.History(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"history": history})
}

func (h *ComposerHandler) Generate(c *fiber.Ctx) error {
	var body transfer.GenerationTrigger
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	sess, err := h.s.Generate(c.Context(), c.Params("id"), body.PlatformType)
	if err != nil {
		if sess != nil {
			// generation failed but the session (with its retained error
			// message) is still worth returning
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error":   err.Error(),
				"session": sess,
			})
		}
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(viewOf(sess))
}

func (h *ComposerHandler) Submit(c *fiber.Ctx) error {
	var body transfer.SubmissionOptions
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	outcome, err := h.s.Submit(c.Context(), c.Params("id"), &body)
	if err != nil {
		return errorJSON(c, err)
	}

	message := "Post submitted successfully"
	if outcome.Scheduled {
		message = "Post scheduled successfully"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"outcome": outcome,
	})
}
