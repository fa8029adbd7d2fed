package validation

import (
	"strings"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

const (
	msgEmail         = "Please enter a valid email address"
	msgPassword      = "Password must be at least 6 characters"
	msgName          = "Name must be at least 2 characters"
	msgPasswordMatch = "Passwords don't match"
	msgTitle         = "Title must be at least 5 characters"
	msgDescription   = "Description must be at least 20 characters"
	msgType          = "Type is required"
	msgImages        = "At least one image is required"
	msgImageURL      = "Invalid url"
	msgPointsValue   = "Points value must be at least 1"
	msgRequired      = "Required"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ItemInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    models.Category  `json:"category"`
	Type        string           `json:"type"`
	Size        models.Size      `json:"size"`
	Condition   models.Condition `json:"condition"`
	Tags        []string         `json:"tags,omitempty"`
	Images      []string         `json:"images"`
	PointsValue int32            `json:"pointsValue"`
}

type SwapRequestInput struct {
	OwnerItemID     string          `json:"ownerItemId"`
	RequesterItemID *string         `json:"requesterItemId,omitempty"`
	SwapType        models.SwapType `json:"swapType"`
	PointsUsed      *int32          `json:"pointsUsed,omitempty"`
	Message         string          `json:"message,omitempty"`
}

type ProfileUpdateInput struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image,omitempty"`
}

// The Normalize methods return the input in the form it is stored. Callers
// validate the normalized value so that length rules hold for what is persisted.

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in LoginInput) Normalize() LoginInput {
	in.Email = normalizeEmail(in.Email)
	return in
}

func (in RegisterInput) Normalize() RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return in
}

func (in ItemInput) Normalize() ItemInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)
	return in
}

func (in ProfileUpdateInput) Normalize() ProfileUpdateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return in
}

func ValidateLogin(in LoginInput) error {
	return Validate(
		Email("email", in.Email, msgEmail),
		MinLen("password", in.Password, 6, msgPassword),
	)
}

func ValidateRegister(in RegisterInput) error {
	return Validate(
		MinLen("name", in.Name, 2, msgName),
		Email("email", in.Email, msgEmail),
		MinLen("password", in.Password, 6, msgPassword),
		Equal("confirmPassword", in.ConfirmPassword, in.Password, msgPasswordMatch),
	)
}

func ValidateItem(in ItemInput) error {
	return Validate(
		MinLen("title", in.Title, 5, msgTitle),
		MinLen("description", in.Description, 20, msgDescription),
		OneOf("category", in.Category, models.Categories),
		MinLen("type", in.Type, 2, msgType),
		OneOf("size", in.Size, models.Sizes),
		OneOf("condition", in.Condition, models.Conditions),
		MinItems("images", in.Images, 1, msgImages),
		Each("images", in.Images, func(field, v string) Check { return URL(field, v, msgImageURL) }),
		MinInt("pointsValue", in.PointsValue, 1, msgPointsValue),
	)
}

// ValidateSwapRequest checks the request shape only; cross-entity rules
// (ownership, balances, points value) are enforced by the swap service.
func ValidateSwapRequest(in SwapRequestInput) error {
	return Validate(
		Required("ownerItemId", in.OwnerItemID != "", msgRequired),
		OneOf("swapType", in.SwapType, []models.SwapType{models.SwapTypeDirect, models.SwapTypePointsRedemption}),
	)
}

func ValidateProfileUpdate(in ProfileUpdateInput) error {
	var image string
	if in.Image != nil {
		image = *in.Image
	}
	return Validate(
		MinLen("name", in.Name, 2, msgName),
		Email("email", in.Email, msgEmail),
		When(in.Image != nil, URL("image", image, msgImageURL)),
	)
}
