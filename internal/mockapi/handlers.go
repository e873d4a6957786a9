// Copyright (c) 2026 RootLink. All rights reserved.

package mockapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/requestutil"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
	"github.com/RuzhenWong/rootlink/internal/platform/sec"
	"github.com/RuzhenWong/rootlink/internal/platform/validate"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

// timeLayout renders timestamps the way the real server does.
const timeLayout = "2006-01-02T15:04:05"

type sendCodeBody struct {
	Phone string `json:"phone"`
	Type  *int   `json:"type"`
}

type registerBody struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type loginBody struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginReply struct {
	Token          string `json:"token"`
	RefreshToken   string `json:"refreshToken"`
	UserID         int64  `json:"userId"`
	RealName       string `json:"realName,omitempty"`
	RealNameStatus int    `json:"realNameStatus"`
	ExpireTime     int64  `json:"expireTime"`
}

type userReply struct {
	UserID         int64  `json:"userId"`
	UUID           string `json:"uuid"`
	Phone          string `json:"phone"`
	RealName       string `json:"realName,omitempty"`
	RealNameStatus int    `json:"realNameStatus"`
	Status         int    `json:"status"`
	LifeStatus     int    `json:"lifeStatus"`
	AllowSearch    bool   `json:"allowSearch"`
	CreateTime     string `json:"createTime"`
	LastLoginTime  string `json:"lastLoginTime,omitempty"`
}

// sendCode handles POST /api/v1/auth/sms/send.
func (server *Server) sendCode(writer http.ResponseWriter, request *http.Request) {
	var body sendCodeBody
	if !server.decode(writer, request, &body) {
		return
	}

	validator := &validate.Validator{}
	validator.Phone("phone", body.Phone).Custom("type", body.Type == nil, "This field is required")
	if !server.validated(writer, validator) {
		return
	}

	phone := validate.Normalize(body.Phone)
	code, err := server.directory.issueCode(phone)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeServerError, err.Error())
		return
	}

	// No SMS gateway: the code is only logged.
	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "mock_sms_code_issued",
		slog.String("phone", phone),
		slog.String("code", code),
	)
	respond.OK(writer, nil)
}

// register handles POST /api/v1/auth/register.
func (server *Server) register(writer http.ResponseWriter, request *http.Request) {
	var body registerBody
	if !server.decode(writer, request, &body) {
		return
	}

	validator := &validate.Validator{}
	validator.Phone("phone", body.Phone).Password("password", body.Password)
	if body.Code != "" {
		validator.Code("code", body.Code)
	}
	if !server.validated(writer, validator) {
		return
	}

	phone := validate.Normalize(body.Phone)
	if body.Code != "" && !server.directory.consumeCode(phone, validate.Normalize(body.Code)) {
		respond.Fail(writer, http.StatusOK, CodeVerificationBad, "Verification code is incorrect")
		return
	}

	hash, err := sec.HashPassword(body.Password, server.bcryptCost)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeServerError, "Registration failed")
		return
	}
	if _, ok := server.directory.add(phone, hash, "", uuid.NewString()); !ok {
		respond.Fail(writer, http.StatusOK, CodePhoneExists, "Phone number is already registered")
		return
	}
	respond.OK(writer, nil)
}

// login handles POST /api/v1/auth/login.
func (server *Server) login(writer http.ResponseWriter, request *http.Request) {
	var body loginBody
	if !server.decode(writer, request, &body) {
		return
	}

	validator := &validate.Validator{}
	validator.Required("phone", body.Phone).Required("password", body.Password)
	if !server.validated(writer, validator) {
		return
	}

	found, ok := server.directory.findByPhone(validate.Normalize(body.Phone))
	if !ok {
		respond.Fail(writer, http.StatusOK, CodeUserNotFound, "User does not exist")
		return
	}
	if !sec.CheckPasswordHash(body.Password, found.PasswordHash) {
		respond.Fail(writer, http.StatusOK, CodePasswordError, "Incorrect password")
		return
	}

	token, expiresAt, err := server.tokens.GenerateAccessToken(strconv.FormatInt(found.ID, 10), found.Phone, server.tokenTTL)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeServerError, "Login failed")
		return
	}
	server.directory.recordIssued(token)
	server.directory.update(found.ID, func(a *account) { a.LastLoginTime = time.Now() })

	respond.OK(writer, loginReply{
		Token:          token,
		UserID:         found.ID,
		RealName:       found.RealName,
		RealNameStatus: found.RealNameStatus,
		ExpireTime:     expiresAt.UnixMilli(),
	})
}

// logout handles POST /api/v1/auth/logout.
func (server *Server) logout(writer http.ResponseWriter, request *http.Request) {
	server.directory.revoke(bearerToken(request))
	respond.OK(writer, nil)
}

// currentUser handles GET /api/v1/user/current.
func (server *Server) currentUser(writer http.ResponseWriter, request *http.Request) {
	found, ok := server.caller(writer, request)
	if !ok {
		return
	}

	reply := userReply{
		UserID:         found.ID,
		UUID:           found.UUID,
		Phone:          maskPhone(found.Phone),
		RealName:       found.RealName,
		RealNameStatus: found.RealNameStatus,
		Status:         1,
		LifeStatus:     0,
		AllowSearch:    true,
		CreateTime:     found.CreateTime.Format(timeLayout),
	}
	if !found.LastLoginTime.IsZero() {
		reply.LastLoginTime = found.LastLoginTime.Format(timeLayout)
	}
	respond.OK(writer, reply)
}

// profile handles GET /api/v1/user/profile.
func (server *Server) profile(writer http.ResponseWriter, request *http.Request) {
	found, ok := server.caller(writer, request)
	if !ok {
		return
	}

	respond.OK(writer, map[string]any{
		"userId":         found.ID,
		"phone":          maskPhone(found.Phone),
		"realName":       found.RealName,
		"realNameStatus": found.RealNameStatus,
		"avatar":         found.Avatar,
		"createTime":     found.CreateTime.Format(timeLayout),
	})
}

// eulogyWall handles GET /api/v1/eulogy/wall. The mock has no eulogies, so
// it only echoes the paging it was asked for.
func (server *Server) eulogyWall(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, emptyPage(request, nil))
}

// eulogyWallByUser handles GET /api/v1/eulogy/wall/{targetUserId}.
func (server *Server) eulogyWallByUser(writer http.ResponseWriter, request *http.Request) {
	target, err := strconv.ParseInt(requestutil.Param(request, "targetUserId"), 10, 64)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeParamError, "Invalid user id")
		return
	}
	if _, found := server.directory.findByID(target); !found {
		respond.Fail(writer, http.StatusOK, CodeUserNotFound, "User does not exist")
		return
	}
	respond.OK(writer, emptyPage(request, map[string]any{"targetUserId": target}))
}

// emptyPage is a page without records that echoes the requested paging.
func emptyPage(request *http.Request, extra map[string]any) map[string]any {
	query := request.URL.Query()
	pageNum, err := strconv.Atoi(query.Get("pageNum"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(query.Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	page := map[string]any{
		"records": []any{},
		"total":   0,
		"current": pageNum,
		"size":    pageSize,
	}
	for key, value := range extra {
		page[key] = value
	}
	return page
}

// submitRealName handles POST /api/v1/user/realname/submit. The mock
// approves every well-formed submission at once.
func (server *Server) submitRealName(writer http.ResponseWriter, request *http.Request) {
	found, ok := server.caller(writer, request)
	if !ok {
		return
	}

	var input struct {
		RealName string `json:"realName"`
		IDCard   string `json:"idCard"`
	}
	if !server.decode(writer, request, &input) {
		return
	}
	validator := &validate.Validator{}
	validator.Required("realName", input.RealName).IDCard("idCard", input.IDCard)
	if !server.validated(writer, validator) {
		return
	}

	server.directory.update(found.ID, func(a *account) {
		a.RealName = input.RealName
		a.RealNameStatus = 2
	})
	respond.OK(writer, nil)
}

// realNameStatus handles GET /api/v1/user/realname/status.
func (server *Server) realNameStatus(writer http.ResponseWriter, request *http.Request) {
	found, ok := server.caller(writer, request)
	if !ok {
		return
	}
	respond.OK(writer, map[string]any{
		"realNameStatus": found.RealNameStatus,
		"realName":       found.RealName,
	})
}

// uploadAvatar handles POST /api/v1/user/avatar (multipart, part "file").
func (server *Server) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	found, ok := server.caller(writer, request)
	if !ok {
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxAvatarBytes)
	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeParamError, "Avatar file is required")
		return
	}
	defer file.Close()

	location := "https://mock.rootlink.local/avatar/" + strconv.FormatInt(found.ID, 10) + "/" + url.PathEscape(path.Base(header.Filename))
	server.directory.update(found.ID, func(a *account) { a.Avatar = location })
	respond.OK(writer, location)
}

// # Helpers

// decode reads a JSON body, answering code 400 on failure.
func (server *Server) decode(writer http.ResponseWriter, request *http.Request, target any) bool {
	if err := requestutil.DecodeJSON(request, target); err != nil {
		respond.Fail(writer, http.StatusOK, CodeParamError, apperr.As(err).Message)
		return false
	}
	return true
}

// validated answers code 400 with the first field message when validation failed.
func (server *Server) validated(writer http.ResponseWriter, validator *validate.Validator) bool {
	err := validator.Err()
	if err == nil {
		return true
	}
	appErr := apperr.As(err)
	message := appErr.Message
	if len(appErr.Details) > 0 {
		message = appErr.Details[0].Field + ": " + appErr.Details[0].Message
	}
	respond.JSON(writer, http.StatusOK, respond.Envelope{Code: CodeParamError, Message: message, Details: appErr.Details})
	return false
}

// caller resolves the account behind the verified token.
func (server *Server) caller(writer http.ResponseWriter, request *http.Request) (account, bool) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeUnauthorized, "Unauthorized")
		return account{}, false
	}

	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		respond.Fail(writer, http.StatusOK, CodeUnauthorized, "Invalid token")
		return account{}, false
	}
	found, ok := server.directory.findByID(id)
	if !ok {
		respond.Fail(writer, http.StatusOK, CodeUserNotFound, "User does not exist")
		return account{}, false
	}
	return found, true
}

// maskPhone hides the middle digits of a phone number.
func maskPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return phone[:3] + "****" + phone[7:]
}
