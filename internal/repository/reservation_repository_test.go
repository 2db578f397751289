package repository

import (
    "errors"
    "testing"

    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
    assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-5' for key 'uq_trip_seat'"}))
    assert.True(t, isDuplicateKey(errors.New("Error 1062: Duplicate entry")))
    assert.False(t, isDuplicateKey(errors.New("Error 1213: Deadlock found")))
    assert.False(t, isDuplicateKey(nil))
}
