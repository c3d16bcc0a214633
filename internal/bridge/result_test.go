package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, Success},
		{errs.Network("GET", errors.New("refused")), NetworkError},
		{fmt.Errorf("sync assets: %w", errs.IO("write", errors.New("disk full"))), IOError},
		{errs.Decode("decode", errors.New("bad json")), DecodeError},
		{errors.New("anything else"), IOError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeOf(tt.err))
	}
}

func TestCodeOfPreconditionPanics(t *testing.T) {
	assert.Panics(t, func() { CodeOf(errs.ErrPrecondition) })
}

func TestStringTableLifecycle(t *testing.T) {
	table := NewStringTable()

	o := table.Lease("checksum mismatch")
	assert.NotZero(t, o.ID)
	assert.Equal(t, len("checksum mismatch"), o.Len)
	assert.Equal(t, "checksum mismatch", table.Text(o))
	assert.Equal(t, 1, table.Outstanding())

	table.Free(o)
	assert.Zero(t, table.Outstanding())

	assert.PanicsWithError(t, fmt.Sprintf("free of unknown or already freed string %d", o.ID), func() { table.Free(o) })
	assert.Panics(t, func() { table.Text(o) })
}

func TestStringTableEmptyString(t *testing.T) {
	table := NewStringTable()

	o := table.Lease("")
	assert.Equal(t, OwnedString{}, o)
	assert.Equal(t, "", table.Text(o))
	assert.NotPanics(t, func() { table.Free(o) })
	assert.NotPanics(t, func() { table.Free(o) })
}

func TestStringTableRejectsForeignLease(t *testing.T) {
	table := NewStringTable()
	o := table.Lease("abc")

	assert.Panics(t, func() { table.Free(OwnedString{ID: o.ID, Len: 99}) })
	assert.Equal(t, 1, table.Outstanding())
	assert.Panics(t, func() { table.Free(OwnedString{ID: 1234, Len: 1}) })
}
