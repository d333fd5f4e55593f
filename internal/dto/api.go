package dto

import "github.com/jakubkanna/labguy-manager/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AuthToken string `json:"token"`
}

type CreateAdminRequest struct {
	MasterPassword string `json:"masterPassword"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

type ChangePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UploadImagesRequest carries base64 data URLs, e.g. "data:image/png;base64,iVBO...".
type UploadImagesRequest struct {
	Images []string `json:"images"`
}

type MediaListResponse struct {
	List []entity.Media `json:"list"`
	// Total counts every stored record, not only the page in List.
	Total int `json:"total"`
}

type DeleteFromBucketRequest struct {
	ObjectKeys []string `json:"objectKeys"`
}

// UploadFile is one file of a multipart video or 3D upload.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}
