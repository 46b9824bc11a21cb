// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
)

// recordDelimiter terminates the username line and the hash/salt block.
const recordDelimiter = '\n'

// UserRecord is one entry of the password file.
//
// On disk a record is laid out as
//
//	<username>\n<32 raw hash bytes><16 raw salt bytes>\n
//
// The hash and salt are raw bytes and may themselves contain '\n', so they
// are always read as fixed-length blocks, never as text.
type UserRecord struct {
	Username string
	Hash     crypto.Hash
	Salt     crypto.Salt
}

// wipe zeroes the secret parts of the record.
func (r *UserRecord) wipe() {
	r.Hash.Wipe()
	r.Salt.Wipe()
}

// validateUsername rejects names that cannot be stored as a single
// delimited line.
func validateUsername(name string) error {
	if name == "" || strings.ContainsRune(name, recordDelimiter) {
		return ErrInvalidUsername
	}
	return nil
}

// recordReader decodes records from a password file opened for reading.
type recordReader struct {
	r *bufio.Reader
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r)}
}

// readRecord decodes the next record into rec.
//
// It returns io.EOF when the input ends where a username is expected,
// which is the normal end of the file. A record cut short inside its hash
// or salt block fails with crypto.ErrInvalidHashLength or
// crypto.ErrInvalidSaltLength. The byte following the salt is consumed but
// not validated.
func (rr *recordReader) readRecord(rec *UserRecord) error {
	name, err := rr.r.ReadString(recordDelimiter)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return err
		}
		if name == "" {
			return io.EOF
		}
		// a username line without its hash/salt block
		return fmt.Errorf("%w: record %q has no hash", crypto.ErrInvalidHashLength, name)
	}
	rec.Username = strings.TrimSuffix(name, string(recordDelimiter))

	if err := rr.readFixed(rec.Hash[:]); err != nil {
		return truncated(err, crypto.ErrInvalidHashLength, rec.Username)
	}
	if err := rr.readFixed(rec.Salt[:]); err != nil {
		return truncated(err, crypto.ErrInvalidSaltLength, rec.Username)
	}

	if _, err := rr.r.ReadByte(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// readFixed fills buf completely.
func (rr *recordReader) readFixed(buf []byte) error {
	_, err := io.ReadFull(rr.r, buf)
	return err
}

// truncated maps an end of input inside a fixed-length block to lengthErr.
// Other read failures are returned unchanged.
func truncated(err, lengthErr error, username string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: record %q is truncated", lengthErr, username)
	}
	return err
}

// recordWriter encodes records into a password file opened for writing.
type recordWriter struct {
	w *bufio.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

// writeRecord encodes rec in the on-disk layout.
func (rw *recordWriter) writeRecord(rec *UserRecord) error {
	if _, err := rw.w.WriteString(rec.Username); err != nil {
		return err
	}
	if err := rw.w.WriteByte(recordDelimiter); err != nil {
		return err
	}
	if _, err := rw.w.Write(rec.Hash[:]); err != nil {
		return err
	}
	if _, err := rw.w.Write(rec.Salt[:]); err != nil {
		return err
	}
	return rw.w.WriteByte(recordDelimiter)
}

// flush writes any buffered data to the underlying file.
func (rw *recordWriter) flush() error {
	return rw.w.Flush()
}
