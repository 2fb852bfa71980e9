package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/newsadmin/internal/errs"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %T", err)
	return ve.Fields
}

func png(n int) *File {
	return &File{Name: "a.png", ContentType: "image/png", Data: make([]byte, n)}
}

func validAuthor() AuthorInput {
	return AuthorInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "0123456789",
		Password:  "Secret1!x",
		Role:      "editor",
		Avatar:    png(10),
	}
}

func TestCredentials_Validate(t *testing.T) {
	t.Parallel()
	got := fieldErrors(t, Credentials{Email: "  ", Password: ""}.Validate())
	require.Equal(t, "Email is required", got["email"])
	require.Equal(t, "Password is required", got["password"])

	require.NoError(t, Credentials{Email: "a@b.com", Password: "secret1"}.Validate())
}

func TestAuthorInput_Validate_Create(t *testing.T) {
	t.Parallel()
	require.NoError(t, validAuthor().Validate(true))

	cases := []struct {
		name  string
		mod   func(*AuthorInput)
		field string
		msg   string
	}{
		{"missing first name", func(a *AuthorInput) { a.FirstName = "" }, "firstName", "First name is required"},
		{"short last name", func(a *AuthorInput) { a.LastName = "L" }, "lastName", "Last name must be at least 2 characters"},
		{"digits in name", func(a *AuthorInput) { a.FirstName = "Ada1" }, "firstName", "First name can only contain letters and spaces"},
		{"bad email", func(a *AuthorInput) { a.Email = "nope" }, "email", "Please enter a valid email address"},
		{"short phone", func(a *AuthorInput) { a.Phone = "12345" }, "phone", "Phone number must be exactly 10 digits"},
		{"weak password", func(a *AuthorInput) { a.Password = "password1" }, "password",
			"Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"},
		{"short password", func(a *AuthorInput) { a.Password = "Aa1!" }, "password", "Password must be at least 8 characters"},
		{"missing role", func(a *AuthorInput) { a.Role = " " }, "role", "Role is required"},
		{"missing avatar", func(a *AuthorInput) { a.Avatar = nil }, "avatar", "Avatar is required"},
		{"large avatar", func(a *AuthorInput) { a.Avatar = png(3 << 20) }, "avatar", "Avatar size should be less than 2MB"},
		{"avatar type", func(a *AuthorInput) {
			a.Avatar = &File{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("x")}
		}, "avatar", "Avatar must be JPEG, PNG, or GIF"},
		{"large cover", func(a *AuthorInput) { a.CoverImage = png(6 << 20) }, "coverImage", "Cover image size should be less than 5MB"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := validAuthor()
			tc.mod(&in)
			got := fieldErrors(t, in.Validate(true))
			require.Equal(t, tc.msg, got[tc.field])
		})
	}
}

func TestAuthorInput_Validate_UpdateAllowsPartial(t *testing.T) {
	t.Parallel()
	require.NoError(t, AuthorInput{Bio: "hello"}.Validate(false))

	got := fieldErrors(t, AuthorInput{Email: "broken"}.Validate(false))
	require.Contains(t, got, "email")
}

func TestAuthorInput_Fields(t *testing.T) {
	t.Parallel()
	active := true
	in := AuthorInput{FirstName: " Ada ", Email: "ada@example.com", IsActive: &active, Avatar: png(1)}
	f := in.Fields()
	require.Equal(t, "Ada", f["firstName"])
	require.Equal(t, "true", f["isActive"])
	require.NotContains(t, f, "lastName")
	require.Len(t, in.Files(), 1)
}

func TestCategoryInput_Validate(t *testing.T) {
	t.Parallel()
	active := true
	ok := CategoryInput{Title: "World", Order: "3", IsActive: &active, Image: png(5)}
	require.NoError(t, ok.Validate(true))

	got := fieldErrors(t, CategoryInput{}.Validate(true))
	require.Equal(t, "Title is required", got["title"])
	require.Equal(t, "Order is required", got["order"])
	require.Equal(t, "Status is required", got["isActive"])
	require.Equal(t, "Image is required", got["image"])

	got = fieldErrors(t, CategoryInput{Order: "x1"}.Validate(false))
	require.Equal(t, "Order must be a number", got["order"])
	require.NotContains(t, got, "image")
}

func TestListParams_Normalize(t *testing.T) {
	t.Parallel()
	p := ListParams{Search: "  news "}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, "createdAt", p.SortBy)
	require.Equal(t, "desc", p.SortOrder)
	require.Equal(t, "news", p.Search)
}

func TestRecords_UnmarshalDocID(t *testing.T) {
	t.Parallel()
	var a Author
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"a1","email":"x@y.z","isVerified":true}`), &a))
	require.Equal(t, "a1", a.RecordID())
	require.True(t, a.IsVerified)

	var c Category
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","_id":"ignored","title":"Tech"}`), &c))
	require.Equal(t, "c1", c.RecordID())
	require.Equal(t, "Tech", c.Title)
}
