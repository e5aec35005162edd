package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// NotFoundError — запрошенная сущность не существует
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// DuplicateKeyError — нарушение уникального ключа (например SKU)
type DuplicateKeyError struct {
	Kind string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Kind, e.Key)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsDuplicateKey(err error) bool {
	var dk *DuplicateKeyError
	return errors.As(err, &dk)
}

// notFound переводит sql.ErrNoRows в типизированную ошибку
func notFound(kind string, id int, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

// duplicateKey переводит ошибку unique_violation драйвера в типизированную
func duplicateKey(kind, key string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &DuplicateKeyError{Kind: kind, Key: key}
	}
	return err
}
