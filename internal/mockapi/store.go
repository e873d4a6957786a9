// Copyright (c) 2026 RootLink. All rights reserved.

package mockapi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// account is one registered user.
type account struct {
	ID             int64
	UUID           string
	Phone          string
	PasswordHash   string
	RealName       string
	RealNameStatus int
	Avatar         string
	CreateTime     time.Time
	LastLoginTime  time.Time
}

// directory holds accounts, SMS codes and token state in memory.
type directory struct {
	mu       sync.Mutex
	nextID   int64
	byPhone  map[string]*account
	byID     map[int64]*account
	codes    map[string]string
	issued   map[string]struct{}
	revoked  map[string]struct{}
	clockNow func() time.Time
}

func newDirectory(now func() time.Time) *directory {
	return &directory{
		nextID:   10001,
		byPhone:  make(map[string]*account),
		byID:     make(map[int64]*account),
		codes:    make(map[string]string),
		issued:   make(map[string]struct{}),
		revoked:  make(map[string]struct{}),
		clockNow: now,
	}
}

// add registers a new account; false if the phone is taken.
func (dir *directory) add(phone, passwordHash, realName, uuid string) (*account, bool) {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	if _, exists := dir.byPhone[phone]; exists {
		return nil, false
	}
	created := &account{
		ID:           dir.nextID,
		UUID:         uuid,
		Phone:        phone,
		PasswordHash: passwordHash,
		RealName:     realName,
		CreateTime:   dir.clockNow(),
	}
	if realName != "" {
		created.RealNameStatus = 2
	}
	dir.nextID++
	dir.byPhone[phone] = created
	dir.byID[created.ID] = created
	return created, true
}

func (dir *directory) findByPhone(phone string) (account, bool) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	found, ok := dir.byPhone[phone]
	if !ok {
		return account{}, false
	}
	return *found, true
}

func (dir *directory) findByID(id int64) (account, bool) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	found, ok := dir.byID[id]
	if !ok {
		return account{}, false
	}
	return *found, true
}

func (dir *directory) update(id int64, mutate func(*account)) bool {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	found, ok := dir.byID[id]
	if ok {
		mutate(found)
	}
	return ok
}

// issueCode creates and remembers a 6-digit code for phone.
func (dir *directory) issueCode(phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("mockapi: generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.codes[phone] = code
	return code, nil
}

// consumeCode checks and forgets the code for phone.
func (dir *directory) consumeCode(phone, code string) bool {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if expected, ok := dir.codes[phone]; ok && expected == code {
		delete(dir.codes, phone)
		return true
	}
	return false
}

func (dir *directory) lastCode(phone string) string {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	return dir.codes[phone]
}

func (dir *directory) recordIssued(token string) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.issued[token] = struct{}{}
}

func (dir *directory) revoke(token string) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.revoked[token] = struct{}{}
}

// revokeAll invalidates every token issued so far.
func (dir *directory) revokeAll() {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	for token := range dir.issued {
		dir.revoked[token] = struct{}{}
	}
}

func (dir *directory) isRevoked(token string) bool {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	_, revoked := dir.revoked[token]
	return revoked
}
