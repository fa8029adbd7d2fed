package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *pkgerrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func validItem() ItemInput {
	return ItemInput{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket from the 90s.",
		Category:    models.CategoryOuterwear,
		Type:        "Jacket",
		Size:        models.SizeM,
		Condition:   models.ConditionExcellent,
		Tags:        []string{"vintage", "denim"},
		Images:      []string{"https://images.example.com/jacket.jpg"},
		PointsValue: 25,
	}
}

func TestValidateItem(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateItem(validItem()))
	})

	t.Run("description of exactly 20 characters is accepted", func(t *testing.T) {
		in := validItem()
		in.Description = strings.Repeat("a", 20)
		assert.NoError(t, ValidateItem(in))
	})

	t.Run("description of 19 characters is rejected", func(t *testing.T) {
		in := validItem()
		in.Description = strings.Repeat("a", 19)
		err := ValidateItem(in)
		assert.ErrorIs(t, err, pkgerrors.ErrValidation)
		assert.Equal(t, map[string]string{"description": "Description must be at least 20 characters"}, fieldsOf(t, err))
	})

	t.Run("tags are optional", func(t *testing.T) {
		in := validItem()
		in.Tags = nil
		assert.NoError(t, ValidateItem(in))
	})

	t.Run("every violation is reported", func(t *testing.T) {
		err := ValidateItem(ItemInput{
			Title:       "Hat",
			Description: "short",
			Category:    "HATS",
			Type:        "x",
			Size:        "XXXL",
			Condition:   "WORN",
			PointsValue: 0,
		})
		fields := fieldsOf(t, err)
		assert.Len(t, fields, 8)
		assert.Equal(t, "Title must be at least 5 characters", fields["title"])
		assert.Equal(t, "Type is required", fields["type"])
		assert.Equal(t, "At least one image is required", fields["images"])
		assert.Equal(t, "Points value must be at least 1", fields["pointsValue"])
		assert.Contains(t, fields["category"], "'TOPS'")
		assert.Contains(t, fields["size"], "received 'XXXL'")
		assert.Contains(t, fields, "condition")
	})

	t.Run("image entries must be urls", func(t *testing.T) {
		in := validItem()
		in.Images = append(in.Images, "not a url")
		assert.Equal(t, map[string]string{"images[1]": "Invalid url"}, fieldsOf(t, ValidateItem(in)))
	})
}

func TestValidateRegister(t *testing.T) {
	valid := RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, ValidateRegister(valid))

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	assert.Equal(t, map[string]string{"confirmPassword": "Passwords don't match"}, fieldsOf(t, ValidateRegister(mismatch)))

	bad := RegisterInput{Name: "J", Email: "jane", Password: "12345", ConfirmPassword: "12345"}
	fields := fieldsOf(t, ValidateRegister(bad))
	assert.Equal(t, "Name must be at least 2 characters", fields["name"])
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Password must be at least 6 characters", fields["password"])
	assert.NotContains(t, fields, "confirmPassword")
}

func TestNormalize(t *testing.T) {
	item := validItem()
	item.Title = "  ab  "
	item.Description = "  Classic blue denim jacket from the 90s.\n"
	item.Type = "\tJacket"
	got := item.Normalize()
	assert.Equal(t, "ab", got.Title)
	assert.Equal(t, "Classic blue denim jacket from the 90s.", got.Description)
	assert.Equal(t, "Jacket", got.Type)
	assert.Equal(t, "Title must be at least 5 characters", fieldsOf(t, ValidateItem(got))["title"])

	reg := RegisterInput{Name: " J ", Email: " Jane@Example.COM ", Password: "secret1", ConfirmPassword: "secret1"}.Normalize()
	assert.Equal(t, "J", reg.Name)
	assert.Equal(t, "jane@example.com", reg.Email)
	assert.Equal(t, map[string]string{"name": "Name must be at least 2 characters"}, fieldsOf(t, ValidateRegister(reg)))

	profile := ProfileUpdateInput{Name: "  Mike ", Email: "MIKE@example.com"}.Normalize()
	assert.Equal(t, ProfileUpdateInput{Name: "Mike", Email: "mike@example.com"}, profile)

	assert.Equal(t, "john@example.com", LoginInput{Email: " John@Example.com"}.Normalize().Email)
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(LoginInput{Email: "john@example.com", Password: "password123"}))
	fields := fieldsOf(t, ValidateLogin(LoginInput{Email: "john", Password: "pw"}))
	assert.Len(t, fields, 2)
}

func TestValidateSwapRequest(t *testing.T) {
	assert.NoError(t, ValidateSwapRequest(SwapRequestInput{OwnerItemID: "abc", SwapType: models.SwapTypeDirect}))

	fields := fieldsOf(t, ValidateSwapRequest(SwapRequestInput{SwapType: "GIFT"}))
	assert.Equal(t, "Required", fields["ownerItemId"])
	assert.Contains(t, fields["swapType"], "'DIRECT_SWAP' | 'POINTS_REDEMPTION'")
}

func TestValidateProfileUpdate(t *testing.T) {
	assert.NoError(t, ValidateProfileUpdate(ProfileUpdateInput{Name: "Mike", Email: "mike@example.com"}))

	img := "https://cdn.example.com/avatar.png"
	assert.NoError(t, ValidateProfileUpdate(ProfileUpdateInput{Name: "Mike", Email: "mike@example.com", Image: &img}))

	bad := "avatar.png"
	assert.Equal(t, map[string]string{"image": "Invalid url"},
		fieldsOf(t, ValidateProfileUpdate(ProfileUpdateInput{Name: "Mike", Email: "mike@example.com", Image: &bad})))
}
