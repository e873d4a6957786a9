// Copyright (c) 2026 RootLink. All rights reserved.

package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Multipart is a file-upload payload.
//
// Passing one as a request body makes the pipeline send multipart/form-data
// with the encoder's boundary, never the JSON content type.
type Multipart struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	content         io.Reader
}

// NewMultipart creates an empty upload payload.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a plain form value.
func (form *Multipart) AddField(name, value string) *Multipart {
	form.fields = append(form.fields, formField{name: name, value: value})
	return form
}

// AddFile appends a file part. content is read once, when the request is sent.
func (form *Multipart) AddFile(field, filename string, content io.Reader) *Multipart {
	form.files = append(form.files, formFile{field: field, filename: filename, content: content})
	return form
}

// encode renders the form and returns it with its boundary content type.
func (form *Multipart) encode() (*bytes.Buffer, string, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	for _, field := range form.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("request: write field %s: %w", field.name, err)
		}
	}
	for _, file := range form.files {
		part, err := writer.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("request: create part %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("request: copy %s: %w", file.filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("request: close multipart writer: %w", err)
	}

	return &buffer, writer.FormDataContentType(), nil
}
