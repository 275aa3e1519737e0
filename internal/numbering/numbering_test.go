package numbering

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&DocumentSequence{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

func TestGenerate_FirstNumberStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	got, err := gen.Generate(db, "visitor_pass", "VP")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := fmt.Sprintf("VP-%d-000001", time.Now().Year())
	if got != want {
		t.Fatalf("number = %q, want %q", got, want)
	}
}

func TestGenerate_SequenceIncrements(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	for i := 1; i <= 3; i++ {
		got, err := gen.Generate(db, "visitor_pass", "VP")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		want := fmt.Sprintf("VP-%d-%06d", time.Now().Year(), i)
		if got != want {
			t.Fatalf("number #%d = %q, want %q", i, got, want)
		}
	}
}

func TestGenerate_NamespacesAreIndependent(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	if _, err := gen.Generate(db, "visitor_pass", "VP"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := gen.Generate(db, "goods_receipt", "GR")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if !strings.HasSuffix(got, "-000001") {
		t.Fatalf("expected fresh sequence for new namespace, got %q", got)
	}
}

func TestGenerate_DefaultPrefixIsUppercasedNamespace(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	got, err := gen.Generate(db, "visitor_pass", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(got, "VISITOR_PASS-") {
		t.Fatalf("number = %q, want VISITOR_PASS- prefix", got)
	}
}

func TestGenerate_EmptyNamespaceErrors(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	if _, err := gen.Generate(db, "  ", "X"); err == nil {
		t.Fatalf("expected error for empty namespace")
	}
}

func TestGenerate_RolledBackTransactionDoesNotAdvance(t *testing.T) {
	db := newTestDB(t)
	gen := &SequenceGenerator{}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := gen.Generate(tx, "visitor_pass", "VP"); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	if err == nil {
		t.Fatalf("expected forced rollback error")
	}

	got, err := gen.Generate(db, "visitor_pass", "VP")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := fmt.Sprintf("VP-%d-000001", time.Now().Year())
	if got != want {
		t.Fatalf("number after rollback = %q, want %q", got, want)
	}
}
