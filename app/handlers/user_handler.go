package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

type UserHandler struct {
	render    *render.Render
	validator *validator.Validate
	userSvc   *services.UserService
	sessions  sessions.SessionStore
	tokens    *token.Manager
}

func NewUserHandler(
	render *render.Render,
	validator *validator.Validate,
	userSvc *services.UserService,
	sessionStore sessions.SessionStore,
	tokens *token.Manager,
) *UserHandler {
	return &UserHandler{
		render:    render,
		validator: validator,
		userSvc:   userSvc,
		sessions:  sessionStore,
		tokens:    tokens,
	}
}

type registerForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required"`
}

type credentialsForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPatchForm struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=5"`
	Name     *string `json:"name"`
}

type profilePatchForm struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=100"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	user, err := h.userSvc.Register(r.Context(), services.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, NewUserResponse(user))
}

// Token exchanges credentials for a signed API token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	user, err := h.userSvc.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.IsStaff)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"token": signed})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	user, err := h.userSvc.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	if err := h.sessions.SetUserID(w, r, user.ID); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	logger.FromCtx(r.Context()).Info("Login: user signed in", "user_id", user.ID)
	_ = h.render.JSON(w, http.StatusOK, NewUserResponse(user))
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearSession(w, r); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"detail": "Logged out."})
}

// Me serves GET, PUT and PATCH on the caller's account. PUT is treated as a
// partial update like PATCH.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := helpers.GetUserFromContext(r.Context())

	if r.Method == http.MethodGet {
		_ = h.render.JSON(w, http.StatusOK, NewUserResponse(user))
		return
	}

	var form userPatchForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	updated, err := h.userSvc.Update(r.Context(), user.ID, services.UserPatch{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, NewUserResponse(updated))
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := helpers.GetUserFromContext(r.Context())

	if r.Method == http.MethodGet {
		customer, err := h.userSvc.Profile(r.Context(), user.ID)
		if err != nil {
			RespondError(h.render, w, r, err)
			return
		}
		_ = h.render.JSON(w, http.StatusOK, NewCustomerResponse(customer))
		return
	}

	var form profilePatchForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	customer, err := h.userSvc.UpdateProfile(r.Context(), user.ID, services.ProfilePatch{
		Name:        form.Name,
		PhoneNumber: form.PhoneNumber,
	})
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, NewCustomerResponse(customer))
}

// CSRFToken hands the masked token to API clients. It is empty when CSRF
// protection is disabled.
func (h *UserHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"csrf_token": csrf.Token(r)})
}
