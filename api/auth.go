package api

import (
	"fmt"
	"strings"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type sessionDoc struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         userDoc `json:"user"`
}

func (doc sessionDoc) toDomain() yozie.Session {
	profile := normalizeUser(doc.User)
	return yozie.Session{
		UserId:       profile.Id,
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		Profile:      profile,
	}
}

func (c *Client) Login(email string, password string) (yozie.Session, error) {
	if err := validateEmail(email); err != nil {
		return yozie.Session{}, err
	}
	if err := requireField("password", password); err != nil {
		return yozie.Session{}, err
	}

	resp, err := c.Do(Request{
		Method:    fiber.MethodPost,
		Path:      "/auth/login",
		Body:      map[string]string{"email": email, "password": password},
		Anonymous: true,
	})
	if err != nil {
		return yozie.Session{}, fmt.Errorf("login request: %w", err)
	}
	return c.installSession(resp)
}

type BuyerRegistration struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

func (c *Client) RegisterBuyer(reg BuyerRegistration) (yozie.Session, error) {
	if err := validateEmail(reg.Email); err != nil {
		return yozie.Session{}, err
	}
	for field, value := range map[string]string{
		"name": reg.Name, "password": reg.Password,
	} {
		if err := requireField(field, value); err != nil {
			return yozie.Session{}, err
		}
	}

	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/auth/register",
		Body: map[string]string{
			"name":     reg.Name,
			"email":    reg.Email,
			"phone":    reg.Phone,
			"password": reg.Password,
			"role":     string(yozie.RoleIdBuyer),
		},
		Anonymous: true,
	})
	if err != nil {
		return yozie.Session{}, fmt.Errorf("register request: %w", err)
	}
	return c.installSession(resp)
}

type VendorRegistration struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	StoreName string
}

// RegisterVendor submits the vendor sign-up form. The identity document is
// mandatory, the logo optional; both travel as multipart file parts.
func (c *Client) RegisterVendor(reg VendorRegistration, document Upload, logo *Upload) (yozie.Session, error) {
	if err := validateEmail(reg.Email); err != nil {
		return yozie.Session{}, err
	}
	for field, value := range map[string]string{
		"name": reg.Name, "password": reg.Password, "storeName": reg.StoreName,
	} {
		if err := requireField(field, value); err != nil {
			return yozie.Session{}, err
		}
	}
	if len(document.Content) == 0 {
		return yozie.Session{}, &ValidationError{Field: "document", Reason: "required"}
	}

	document.Field = "document"
	files := []Upload{document}
	if logo != nil {
		attached := *logo
		attached.Field = "logo"
		files = append(files, attached)
	}

	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/auth/register-vendor",
		Form: map[string]string{
			"name":      reg.Name,
			"email":     reg.Email,
			"phone":     reg.Phone,
			"password":  reg.Password,
			"storeName": reg.StoreName,
			"role":      string(yozie.RoleIdVendor),
		},
		Files:     files,
		Anonymous: true,
	})
	if err != nil {
		return yozie.Session{}, fmt.Errorf("register vendor request: %w", err)
	}
	return c.installSession(resp)
}

func (c *Client) installSession(resp Response) (yozie.Session, error) {
	var doc sessionDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Session{}, err
	}
	session := doc.toDomain()
	if err := c.Session.Replace(session); err != nil {
		return yozie.Session{}, fmt.Errorf("store session: %w", err)
	}
	logrus.WithField("user_id", session.UserId).Infoln("Session installed.")
	return session, nil
}

// Logout tells the backend to drop the session, then clears local state.
// Local state is cleared even when the backend call fails; a dead token is
// not worth keeping.
func (c *Client) Logout() error {
	resp, err := c.Do(Request{Method: fiber.MethodPost, Path: "/auth/logout"})
	if clearErr := c.Session.Clear(); clearErr != nil {
		return fmt.Errorf("clear session: %w", clearErr)
	}
	if err != nil {
		logrus.WithError(err).Warningln("Logout request failed, session cleared locally.")
		return nil
	}
	if respErr := resp.Err(); respErr != nil {
		logrus.WithError(respErr).Warningln("Logout rejected, session cleared locally.")
		return nil
	}
	logrus.Infoln("Logged out.")
	return nil
}

type ProfileUpdate struct {
	Name      string
	Phone     string
	StoreName string
	Avatar    *Upload
}

func (c *Client) UpdateProfile(update ProfileUpdate) (yozie.User, error) {
	if err := requireField("name", update.Name); err != nil {
		return yozie.User{}, err
	}

	req := Request{
		Method: fiber.MethodPut,
		Path:   "/users/me",
		Body: map[string]string{
			"name":      update.Name,
			"phone":     update.Phone,
			"storeName": update.StoreName,
		},
	}
	if update.Avatar != nil {
		avatar := *update.Avatar
		avatar.Field = "avatar"
		req.Body = nil
		req.Form = map[string]string{
			"name":      update.Name,
			"phone":     update.Phone,
			"storeName": update.StoreName,
		}
		req.Files = []Upload{avatar}
	}

	resp, err := c.Do(req)
	if err != nil {
		return yozie.User{}, fmt.Errorf("update profile request: %w", err)
	}
	var doc userDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.User{}, err
	}
	profile := normalizeUser(doc)
	if err := c.Session.ReplaceProfile(profile); err != nil {
		return yozie.User{}, fmt.Errorf("store profile: %w", err)
	}
	return profile, nil
}

func validateEmail(email string) error {
	if err := requireField("email", email); err != nil {
		return err
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "not an email address"}
	}
	return nil
}

// requirePermission gates vendor-only mutations client-side so a buyer never
// issues a request the backend would reject anyway.
func (c *Client) requirePermission(permission yozie.PermissionName) error {
	session, err := c.Session.Current()
	if err != nil {
		return yozie.ErrNoSession
	}
	if session.Profile.Roles.Access(permission) != yozie.AccessAllowed {
		return yozie.ErrForbidden
	}
	return nil
}
