package usecases_test

import (
	"testing"

	"github.com/enekolm/aldapa/internal/core/usecases"
)

func TestCursor_SelectValid(t *testing.T) {
	cursor := usecases.NewProfileCursor(profileWith(1, 2, 3))

	if !cursor.Select(1) {
		t.Fatal("expected select to succeed")
	}
	if cursor.Index() == nil || *cursor.Index() != 1 {
		t.Errorf("expected index 1, got %v", cursor.Index())
	}
	p := cursor.Point()
	if p == nil || p.Lat != 1 {
		t.Errorf("expected highlight at sample 1, got %+v", p)
	}
}

func TestCursor_OutOfRangeIsNoOp(t *testing.T) {
	cursor := usecases.NewProfileCursor(profileWith(1, 2, 3))
	cursor.Select(2)

	for _, index := range []int{-1, 3, 100} {
		if cursor.Select(index) {
			t.Errorf("select(%d) should be ignored", index)
		}
		if cursor.Index() == nil || *cursor.Index() != 2 {
			t.Errorf("select(%d) mutated cursor: %v", index, cursor.Index())
		}
	}
}

func TestCursor_Clear(t *testing.T) {
	cursor := usecases.NewProfileCursor(profileWith(1, 2))
	cursor.Select(0)
	cursor.Clear()

	if cursor.Index() != nil {
		t.Errorf("expected cleared cursor, got %v", cursor.Index())
	}
	if cursor.Point() != nil {
		t.Errorf("expected no highlight point, got %+v", cursor.Point())
	}
}

func TestCursor_EmptyProfile(t *testing.T) {
	cursor := usecases.NewProfileCursor(nil)
	if cursor.Select(0) {
		t.Error("select on empty profile must be ignored")
	}
}
