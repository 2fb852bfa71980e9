package model

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/and161185/newsadmin/internal/errs"
)

// File is an attachment submitted with a multipart form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the attachment size in bytes.
func (f *File) Size() int64 { return int64(len(f.Data)) }

const (
	maxAvatarSize = 2 << 20
	maxCoverSize  = 5 << 20
	maxImageSize  = 2 << 20
)

var imageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

var (
	reName   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	reEmail  = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	rePhone  = regexp.MustCompile(`^\d{10}$`)
	reDigits = regexp.MustCompile(`^[0-9]+$`)
	rePwChar = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
)

// Credentials is the login form.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks required fields only; the server owns credential rules.
func (c Credentials) Validate() error {
	v := &errs.ValidationError{}
	if strings.TrimSpace(c.Email) == "" {
		v.Add("email", "Email is required")
	}
	if strings.TrimSpace(c.Password) == "" {
		v.Add("password", "Password is required")
	}
	return v.OrNil()
}

// AuthorInput is the author create/edit form.
type AuthorInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Password   string
	Role       string
	Bio        string
	IsActive   *bool
	Avatar     *File
	CoverImage *File
}

// Validate applies the form rules. On create every required field must be present;
// on update only the supplied fields are checked.
func (in AuthorInput) Validate(create bool) error {
	v := &errs.ValidationError{}
	checkName(v, "firstName", "First name", in.FirstName, create)
	checkName(v, "lastName", "Last name", in.LastName, create)

	if email := strings.TrimSpace(in.Email); email == "" {
		if create {
			v.Add("email", "Email is required")
		}
	} else if !reEmail.MatchString(email) {
		v.Add("email", "Please enter a valid email address")
	}

	if phone := strings.TrimSpace(in.Phone); phone == "" {
		if create {
			v.Add("phone", "Phone number is required")
		}
	} else if !rePhone.MatchString(phone) {
		v.Add("phone", "Phone number must be exactly 10 digits")
	}

	if in.Password == "" {
		if create {
			v.Add("password", "Password is required")
		}
	} else if msg := passwordProblem(in.Password); msg != "" {
		v.Add("password", msg)
	}

	if create && strings.TrimSpace(in.Role) == "" {
		v.Add("role", "Role is required")
	}

	if in.Avatar == nil {
		if create {
			v.Add("avatar", "Avatar is required")
		}
	} else {
		checkImage(v, "avatar", in.Avatar, maxAvatarSize,
			"Avatar size should be less than 2MB", "Avatar must be JPEG, PNG, or GIF")
	}
	if in.CoverImage != nil {
		checkImage(v, "coverImage", in.CoverImage, maxCoverSize,
			"Cover image size should be less than 5MB", "Cover image must be JPEG, PNG, or GIF")
	}
	return v.OrNil()
}

// Fields returns the trimmed, non-empty text fields in wire names.
func (in AuthorInput) Fields() map[string]string {
	out := map[string]string{}
	put(out, "firstName", in.FirstName)
	put(out, "lastName", in.LastName)
	put(out, "email", in.Email)
	put(out, "phone", in.Phone)
	put(out, "role", in.Role)
	put(out, "bio", in.Bio)
	if in.Password != "" {
		out["password"] = in.Password
	}
	if in.IsActive != nil {
		out["isActive"] = strconv.FormatBool(*in.IsActive)
	}
	return out
}

// Files returns the attachments keyed by wire name.
func (in AuthorInput) Files() map[string]*File {
	out := map[string]*File{}
	if in.Avatar != nil {
		out["avatar"] = in.Avatar
	}
	if in.CoverImage != nil {
		out["coverImage"] = in.CoverImage
	}
	return out
}

// CategoryInput is the category create/edit form.
type CategoryInput struct {
	Title    string
	Order    string
	IsActive *bool
	Image    *File
}

// Validate applies the category form rules.
func (in CategoryInput) Validate(create bool) error {
	v := &errs.ValidationError{}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		if create {
			v.Add("title", "Title is required")
		}
	case len(title) < 2:
		v.Add("title", "Title must be at least 2 characters")
	case len(title) > 50:
		v.Add("title", "Title cannot exceed 50 characters")
	}

	if order := strings.TrimSpace(in.Order); order == "" {
		if create {
			v.Add("order", "Order is required")
		}
	} else if !reDigits.MatchString(order) {
		v.Add("order", "Order must be a number")
	}

	if create && in.IsActive == nil {
		v.Add("isActive", "Status is required")
	}

	if in.Image == nil {
		if create {
			v.Add("image", "Image is required")
		}
	} else {
		checkImage(v, "image", in.Image, maxImageSize,
			"Image size should be less than 2MB", "Image must be JPEG, PNG, Webp, svg or GIF")
	}
	return v.OrNil()
}

// Fields returns the trimmed, non-empty text fields in wire names.
func (in CategoryInput) Fields() map[string]string {
	out := map[string]string{}
	put(out, "title", in.Title)
	put(out, "order", in.Order)
	if in.IsActive != nil {
		out["isActive"] = strconv.FormatBool(*in.IsActive)
	}
	return out
}

// Files returns the attachments keyed by wire name.
func (in CategoryInput) Files() map[string]*File {
	out := map[string]*File{}
	if in.Image != nil {
		out["image"] = in.Image
	}
	return out
}

// StatusInput is the body of a status-only update.
type StatusInput struct {
	IsActive bool `json:"isActive"`
}

// ListParams are the list filters; zero values fall back to defaults in Normalize.
type ListParams struct {
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
	Search     string
	Role       string
	IsActive   *bool
	IsVerified *bool
}

// Normalize fills defaults and trims the search term.
func (p ListParams) Normalize() ListParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if p.SortOrder == "" {
		p.SortOrder = "desc"
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// ------- helpers -------

func put(m map[string]string, k, v string) {
	if v = strings.TrimSpace(v); v != "" {
		m[k] = v
	}
}

func checkName(v *errs.ValidationError, field, label, val string, required bool) {
	val = strings.TrimSpace(val)
	switch {
	case val == "":
		if required {
			v.Add(field, label+" is required")
		}
	case len(val) < 2:
		v.Add(field, label+" must be at least 2 characters")
	case len(val) > 50:
		v.Add(field, label+" cannot exceed 50 characters")
	case !reName.MatchString(val):
		v.Add(field, label+" can only contain letters and spaces")
	}
}

// passwordProblem returns the first failed password rule, or "".
func passwordProblem(pw string) string {
	switch {
	case len(pw) < 8:
		return "Password must be at least 8 characters"
	case len(pw) > 30:
		return "Password cannot exceed 30 characters"
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special || !rePwChar.MatchString(pw) {
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

func checkImage(v *errs.ValidationError, field string, f *File, limit int64, sizeMsg, typeMsg string) {
	if f.Size() > limit {
		v.Add(field, sizeMsg)
		return
	}
	if !imageTypes[f.ContentType] {
		v.Add(field, typeMsg)
	}
}
