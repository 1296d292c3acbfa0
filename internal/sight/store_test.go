package sight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// storeContract exercises the Store behavior shared by every implementation.
func storeContract(t *testing.T, st Store) {
	t.Helper()
	base := time.Date(2022, 12, 22, 21, 0, 0, 0, time.UTC)

	first := newSunSight(t, base.Add(time.Minute))
	second := newSunSight(t, base)
	for _, s := range []Sight{first, second} {
		if err := st.Save(s); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	list, err := st.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("List() not ordered oldest first: %+v", list)
	}

	got, err := st.Get(first.ID)
	if err != nil || got.ID != first.ID {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if err := st.SetActive(first.ID, false); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}
	if got, _ := st.Get(first.ID); got.Active {
		t.Error("SetActive(false) did not stick")
	}

	first.Hs = 50
	if err := st.Save(first); err != nil {
		t.Fatal(err)
	}
	if list, _ := st.List(); len(list) != 2 {
		t.Errorf("Save of existing ID should replace, got %d sights", len(list))
	}

	if err := st.Delete(second.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := st.Get(second.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}

	for _, op := range []func() error{
		func() error { return st.Delete("missing") },
		func() error { return st.SetActive("missing", true) },
		func() error { _, err := st.Get("missing"); return err },
	} {
		if err := op(); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	}

	if err := st.Save(Sight{}); err == nil {
		t.Error("Save without ID should fail")
	}

	if err := st.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll() error: %v", err)
	}
	if list, _ := st.List(); len(list) != 0 {
		t.Errorf("DeleteAll left %d sights", len(list))
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	st, err := OpenFileStore(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("OpenFileStore() error: %v", err)
	}
	storeContract(t, st)
}

func TestFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", FileName)

	st, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s := newSunSight(t, time.Date(2022, 12, 22, 21, 0, 0, 0, time.UTC))
	if err := st.Save(s); err != nil {
		t.Fatal(err)
	}
	if err := st.SetActive(s.ID, false); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	got, err := reopened.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() after reopen: %v", err)
	}
	if got.Active || got.Limb != s.Limb || got.Direction != s.Direction || got.Zn != s.Zn ||
		!got.CreatedAt.Equal(s.CreatedAt) {
		t.Errorf("reloaded sight differs:\n got %+v\nwant %+v", got, s)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only %s, found %d entries", FileName, len(entries))
	}
}

func TestOpenFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFileStore(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestFileStore_FailedWriteLeavesStoreUnchanged(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	st, err := OpenFileStore(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2022, 12, 22, 21, 0, 0, 0, time.UTC)
	kept := newSunSight(t, base)
	if err := st.Save(kept); err != nil {
		t.Fatal(err)
	}

	// Replace the directory with a plain file so every write fails.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ops := []struct {
		name string
		op   func() error
	}{
		{"Save", func() error { return st.Save(newSunSight(t, base.Add(time.Minute))) }},
		{"Delete", func() error { return st.Delete(kept.ID) }},
		{"DeleteAll", st.DeleteAll},
		{"SetActive", func() error { return st.SetActive(kept.ID, false) }},
	}
	for _, tt := range ops {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); err == nil {
				t.Fatal("expected write error")
			}
			list, err := st.List()
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 || list[0].ID != kept.ID || !list[0].Active {
				t.Errorf("store changed after failed write: %+v", list)
			}
		})
	}
}
