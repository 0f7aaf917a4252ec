package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

// MaxAvatarSize caps profile picture uploads.
const MaxAvatarSize = 5 << 20

var allowedAvatarExt = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

type ProfileHandler struct {
	authService ports.AuthService
	avatars     ports.AvatarStorage
}

func NewProfileHandler(authService ports.AuthService, avatars ports.AvatarStorage) *ProfileHandler {
	return &ProfileHandler{authService: authService, avatars: avatars}
}

// UploadPicture stores the uploaded image and points the profile at it.
//
// @Summary      Replace profile picture
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file (jpg, png, gif, webp)"
// @Success      200    {object}  profilePictureResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      413    {object}  errorResponse
// @Security     SessionCookie
// @Router       /me/profile-picture [put]
func (h *ProfileHandler) UploadPicture(c echo.Context) error {
	_, userID, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required")
	}
	if fh.Size > MaxAvatarSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("image must be at most %d bytes", MaxAvatarSize))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedAvatarExt[ext]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}

	ctx := c.Request().Context()
	if _, err := h.authService.CurrentUser(ctx, userID.String()); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path, err := h.avatars.SaveAvatar(ctx, userID.String(), ext, src, fh.Size, fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return err
	}

	ok, err := h.authService.UpdateUserProfile(ctx, userID.String(), path)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, profilePictureResponse{ProfilePicture: path})
}
