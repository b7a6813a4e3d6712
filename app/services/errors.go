package services

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound không có record với id đã cho
	ErrRecordNotFound = errors.New("không tìm thấy record")
	// ErrDuplicateAddress địa chỉ đã tồn tại trong cùng sub-district/village
	ErrDuplicateAddress = errors.New("địa chỉ đã tồn tại")
)

// Tên các collaborator bên ngoài
const (
	CollaboratorStore   = "store"
	CollaboratorCache   = "cache"
	CollaboratorOCR     = "ocr"
	CollaboratorSearch  = "search"
	CollaboratorBroker  = "broker"
	CollaboratorArchive = "archive"
	CollaboratorScanLog = "scan_log"
)

// CollaboratorError lỗi từ hệ thống bên ngoài (store, OCR, cache...). Không retry ở đây,
// caller quyết định.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// newCollaboratorError bọc err, giữ nguyên nil và sentinel error của domain
func newCollaboratorError(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrDuplicateAddress) {
		return err
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}

// IsCollaboratorError kiểm tra err có phải lỗi collaborator không
func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
