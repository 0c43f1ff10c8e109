package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/service"
	"github.com/maheshrc27/socialpro/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	draft, err := parseDraft(c)
	if err != nil {
		slog.Info(err.Error())
		return respondError(c, err)
	}

	post, err := h.s.Submit(c.Context(), userID, draft)
	if err != nil {
		return respondError(c, err)
	}

	message := "Post published"
	if post.Status == models.PostStatusScheduled {
		message = "Post scheduled successfully"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"post":    post,
	})
}

func parseDraft(c *fiber.Ctx) (*transfer.PostDraft, error) {
	platforms, err := parsePlatforms(c.FormValue("platforms"))
	if err != nil {
		return nil, err
	}

	overrides, err := parsePlatformContent(c.FormValue("platform_content"))
	if err != nil {
		return nil, err
	}

	scheduledFor, err := service.ParseSchedule(c.FormValue("scheduled_for"))
	if err != nil {
		return nil, err
	}

	draft := &transfer.PostDraft{
		Content:                 c.FormValue("content"),
		Link:                    strings.TrimSpace(c.FormValue("link")),
		Location:                strings.TrimSpace(c.FormValue("location")),
		Hashtags:                service.ParseHashtags(c.FormValue("hashtags")),
		Platforms:               platforms,
		PlatformSpecificContent: overrides,
		ScheduledFor:            scheduledFor,
	}

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, &service.ValidationError{Msg: "Unable to parse form"}
		}
		for _, fh := range form.File["files"] {
			upload, err := readUpload(fh)
			if err != nil {
				return nil, &service.ValidationError{Msg: err.Error()}
			}
			draft.Images = append(draft.Images, upload)
		}
	}

	return draft, nil
}

// parsePlatforms accepts {"twitter":true,...} or a comma separated list.
func parsePlatforms(raw string) (map[models.Provider]bool, error) {
	platforms := map[models.Provider]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return platforms, nil
	}

	if strings.HasPrefix(raw, "{") {
		var selected map[string]bool
		if err := json.Unmarshal([]byte(raw), &selected); err != nil {
			return nil, &service.ValidationError{Msg: "invalid platforms format"}
		}
		for name, on := range selected {
			p, err := models.ParseProvider(name)
			if err != nil {
				return nil, &service.ValidationError{Msg: err.Error()}
			}
			platforms[p] = on
		}
		return platforms, nil
	}

	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := models.ParseProvider(name)
		if err != nil {
			return nil, &service.ValidationError{Msg: err.Error()}
		}
		platforms[p] = true
	}
	return platforms, nil
}

// parsePlatformContent accepts {"twitter":{"content":"..."}} or {"twitter":"..."}.
func parsePlatformContent(raw string) (map[models.Provider]models.PlatformContent, error) {
	overrides := map[models.Provider]models.PlatformContent{}
	if strings.TrimSpace(raw) == "" {
		return overrides, nil
	}

	var byName map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &byName); err != nil {
		return nil, &service.ValidationError{Msg: "invalid platform_content format"}
	}

	for name, value := range byName {
		p, err := models.ParseProvider(name)
		if err != nil {
			return nil, &service.ValidationError{Msg: err.Error()}
		}

		var pc models.PlatformContent
		if err := json.Unmarshal(value, &pc); err != nil {
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return nil, &service.ValidationError{Msg: fmt.Sprintf("invalid content for %s", name)}
			}
			pc.Content = text
		}
		overrides[p] = pc
	}
	return overrides, nil
}

func readUpload(fh *multipart.FileHeader) (transfer.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return transfer.Upload{}, fmt.Errorf("error opening file %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return transfer.Upload{}, fmt.Errorf("error reading file %s", fh.Filename)
	}
	return transfer.Upload{Name: fh.Filename, Data: data}, nil
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userId := GetUserID(c)
	postId := c.QueryInt("id", 0)

	if postId != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postId), userId)
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userId)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postId := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postId)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
