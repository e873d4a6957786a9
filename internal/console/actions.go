// Copyright (c) 2026 RootLink. All rights reserved.

package console

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/RuzhenWong/rootlink/internal/api"
	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/notify"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/requestutil"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
	"github.com/RuzhenWong/rootlink/internal/platform/validate"
	"github.com/RuzhenWong/rootlink/internal/router"
)

// maxAvatarBytes caps avatar uploads accepted by the console.
const maxAvatarBytes = 5 << 20

// maxRealNameLength bounds the name submitted for verification.
const maxRealNameLength = 50

// loginForm is the body of POST /login.
type loginForm struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	// Redirect is the pending navigation intent; the query parameter wins.
	Redirect string `json:"redirect"`
}

// registerForm is the body of POST /register.
type registerForm struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// login handles POST /login.
func (h *handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Input ──────────────────────────────────────────────────────────
	var form loginForm
	if err := decodeForm(request, &form, func(values formValues) {
		form.Phone, form.Password, form.Redirect = values("phone"), values("password"), values("redirect")
	}); err != nil {
		h.fail(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Phone("phone", form.Phone).Required("password", form.Password)
	if err := validator.Err(); err != nil {
		h.fail(writer, request, err)
		return
	}

	// ── 2. Authenticate ───────────────────────────────────────────────────
	credentials := domain.Credentials{Phone: validate.Normalize(form.Phone), Password: form.Password}
	if _, err := h.deps.Session.Login(request.Context(), credentials); err != nil {
		h.fail(writer, request, err)
		return
	}
	notify.Success(request.Context(), h.deps.Flash, "Logged in")

	// ── 3. Land ───────────────────────────────────────────────────────────
	intent := request.URL.Query().Get(constants.QueryRedirect)
	if intent == "" {
		intent = form.Redirect
	}
	h.land(writer, request, router.IntendedPath(intent))
}

// logout handles POST /logout.
//
// The server-side logout is best effort: its failure never keeps the local
// session alive.
func (h *handler) logout(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	if h.deps.Session.IsLoggedIn() {
		if err := h.deps.API.Auth.Logout(ctx); err != nil {
			ctxutil.GetLogger(ctx).InfoContext(ctx, "remote_logout_failed", slog.Any("error", err))
		}
	}
	if err := h.deps.Session.Logout(ctx); err != nil {
		respond.Error(writer, request, err)
		return
	}

	h.land(writer, request, constants.PathLogin)
}

// register handles POST /register.
func (h *handler) register(writer http.ResponseWriter, request *http.Request) {
	var form registerForm
	if err := decodeForm(request, &form, func(values formValues) {
		form.Phone, form.Password, form.Code = values("phone"), values("password"), values("code")
	}); err != nil {
		h.fail(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Phone("phone", form.Phone).Password("password", form.Password).Code("code", form.Code)
	if err := validator.Err(); err != nil {
		h.fail(writer, request, err)
		return
	}

	err := h.deps.API.Auth.Register(request.Context(), api.RegisterInput{
		Phone:    validate.Normalize(form.Phone),
		Password: form.Password,
		Code:     validate.Normalize(form.Code),
	})
	if err != nil {
		h.fail(writer, request, err)
		return
	}

	notify.Success(request.Context(), h.deps.Flash, "Registration successful, please log in")
	h.land(writer, request, constants.PathLogin)
}

// sendCode handles POST /register/code.
func (h *handler) sendCode(writer http.ResponseWriter, request *http.Request) {
	var form struct {
		Phone string `json:"phone"`
	}
	if err := decodeForm(request, &form, func(values formValues) {
		form.Phone = values("phone")
	}); err != nil {
		h.fail(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Phone("phone", form.Phone).Err(); err != nil {
		h.fail(writer, request, err)
		return
	}

	input := api.SendCodeInput{Phone: validate.Normalize(form.Phone), Type: api.CodeTypeRegister}
	if err := h.deps.API.Auth.SendCode(request.Context(), input); err != nil {
		h.fail(writer, request, err)
		return
	}

	notify.Success(request.Context(), h.deps.Flash, "Verification code sent")
	respond.OK(writer, map[string]any{"notices": h.deps.Flash.Drain()})
}

// submitRealName handles POST /realname.
func (h *handler) submitRealName(writer http.ResponseWriter, request *http.Request) {
	if !h.deps.Session.IsLoggedIn() {
		http.Redirect(writer, request, router.LoginLocation(constants.PathRealName), http.StatusSeeOther)
		return
	}

	var form api.RealNameInput
	if err := decodeForm(request, &form, func(values formValues) {
		form.RealName, form.IDCard = values("realName"), values("idCard")
	}); err != nil {
		h.fail(writer, request, err)
		return
	}

	form.RealName = strings.TrimSpace(form.RealName)
	form.IDCard = validate.Normalize(form.IDCard)
	validator := &validate.Validator{}
	validator.Required("realName", form.RealName).
		MaxLen("realName", form.RealName, maxRealNameLength).
		IDCard("idCard", form.IDCard)
	if err := validator.Err(); err != nil {
		h.fail(writer, request, err)
		return
	}

	if err := h.deps.API.User.SubmitRealName(request.Context(), form); err != nil {
		h.fail(writer, request, err)
		return
	}

	notify.Success(request.Context(), h.deps.Flash, "Real-name verification submitted")
	h.land(writer, request, constants.PathRealName)
}

// uploadAvatar handles POST /profile/avatar, passing the "file" part through.
func (h *handler) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	if !h.deps.Session.IsLoggedIn() {
		http.Redirect(writer, request, router.LoginLocation("/profile"), http.StatusSeeOther)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxAvatarBytes)
	file, header, err := request.FormFile("file")
	if err != nil {
		validator := &validate.Validator{}
		h.fail(writer, request, validator.Custom("file", true, "An image file is required").Err())
		return
	}
	defer file.Close()

	location, err := h.deps.API.User.UploadAvatar(request.Context(), header.Filename, file)
	if err != nil {
		h.fail(writer, request, err)
		return
	}

	notify.Success(request.Context(), h.deps.Flash, "Avatar updated")
	respond.OK(writer, map[string]any{"url": location, "notices": h.deps.Flash.Drain()})
}

// land navigates to target through the guard and redirects the browser to
// wherever that ends.
func (h *handler) land(writer http.ResponseWriter, request *http.Request, target string) {
	decision, err := h.deps.Navigator.Push(request.Context(), target)
	if errors.Is(err, router.ErrNavigationAborted) {
		return
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	writer.Header().Set(constants.HeaderPageTitle, decision.Title)
	http.Redirect(writer, request, h.deps.Navigator.Current(), http.StatusSeeOther)
}

// formValues reads one field of an url-encoded or multipart form.
type formValues func(name string) string

// decodeForm accepts both JSON bodies and HTML form posts.
func decodeForm(request *http.Request, target any, fromForm func(formValues)) error {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))
	if mediaType == constants.ContentTypeJSON || mediaType == "" {
		return requestutil.DecodeJSON(request, target)
	}

	if err := request.ParseForm(); err != nil {
		return requestutil.ErrInvalidBody.WithCause(err)
	}
	fromForm(request.PostForm.Get)
	return nil
}
