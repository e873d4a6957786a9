// Copyright (c) 2026 RootLink. All rights reserved.

// Package domain holds the value types shared by the session store, the
// session manager and the API wrappers.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server-assigned identifier.
//
// The server emits user ids as JSON numbers while other endpoints use
// strings; both decode into the same string form.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = ID(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("domain: id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(number.String(), 10, 64); err != nil {
		return fmt.Errorf("domain: id %s is not an integer", number)
	}
	*id = ID(number.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Credentials is the login form payload. Format checks happen before it is built.
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResult is the data of a successful login envelope.
type LoginResult struct {
	Token          string `json:"token"`
	RefreshToken   string `json:"refreshToken,omitempty"`
	UserID         ID     `json:"userId"`
	RealName       string `json:"realName,omitempty"`
	RealNameStatus int    `json:"realNameStatus,omitempty"`
	// ExpireTime is the token expiry as a millisecond timestamp.
	ExpireTime int64 `json:"expireTime,omitempty"`
}

// UserInfo is the current user's profile as returned by the server.
type UserInfo struct {
	UserID         ID     `json:"userId,omitempty"`
	UUID           string `json:"uuid,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	RealName       string `json:"realName,omitempty"`
	RealNameStatus int    `json:"realNameStatus,omitempty"`
	Status         int    `json:"status,omitempty"`
	LifeStatus     int    `json:"lifeStatus,omitempty"`
	AllowSearch    bool   `json:"allowSearch,omitempty"`
	CreateTime     string `json:"createTime,omitempty"`
	LastLoginTime  string `json:"lastLoginTime,omitempty"`
}

// Clone returns a copy that callers may mutate freely.
func (u *UserInfo) Clone() *UserInfo {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
