package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testCave(name string) *model.Cave {
	return &model.Cave{
		Name: name,
		Surveys: []*model.Survey{
			{
				Name: "entrance",
				Shots: []model.Shot{
					{ID: 0, Type: model.ShotTypeCenter, From: "A", To: "B", Length: 10},
				},
			},
		},
	}
}

func TestStoreSaveAndGetCave(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.SaveCave(ctx, testCave("alpha")); err != nil {
		t.Fatalf("SaveCave: %v", err)
	}

	got, err := st.GetCave(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetCave: %v", err)
	}
	if got.Name != "alpha" || len(got.Surveys) != 1 {
		t.Errorf("loaded cave = %+v", got)
	}
	if got.Surveys[0].Shots[0].Type != model.ShotTypeCenter {
		t.Errorf("shot type lost through the store")
	}
}

func TestStoreSaveCaveUpserts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	cave := testCave("alpha")
	if err := st.SaveCave(ctx, cave); err != nil {
		t.Fatalf("first save: %v", err)
	}

	cave.Surveys[0].Shots = append(cave.Surveys[0].Shots,
		model.Shot{ID: 1, Type: model.ShotTypeCenter, From: "B", To: "C", Length: 5})
	if err := st.SaveCave(ctx, cave); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := st.GetCave(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetCave: %v", err)
	}
	if len(got.Surveys[0].Shots) != 2 {
		t.Errorf("shots = %d, want the updated document", len(got.Surveys[0].Shots))
	}

	names, err := st.ListCaveNames(ctx)
	if err != nil {
		t.Fatalf("ListCaveNames: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("names = %v, want a single entry after upsert", names)
	}
}

func TestStoreGetCaveNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.GetCave(context.Background(), "missing")
	if !errors.Is(err, ErrCaveNotFound) {
		t.Fatalf("got %v, want ErrCaveNotFound", err)
	}
}

func TestStoreListAndDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zulu", "alpha"} {
		if err := st.SaveCave(ctx, testCave(name)); err != nil {
			t.Fatalf("SaveCave(%q): %v", name, err)
		}
	}

	names, err := st.ListCaveNames(ctx)
	if err != nil {
		t.Fatalf("ListCaveNames: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zulu" {
		t.Errorf("names = %v, want alphabetical [alpha zulu]", names)
	}

	if err := st.DeleteCave(ctx, "alpha"); err != nil {
		t.Fatalf("DeleteCave: %v", err)
	}
	if err := st.DeleteCave(ctx, "alpha"); !errors.Is(err, ErrCaveNotFound) {
		t.Errorf("second delete: got %v, want ErrCaveNotFound", err)
	}
}

func TestStoreDeclinationCache(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetDeclination(ctx, "47.50:19.03:2024"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v, want a clean miss", ok, err)
	}

	if err := st.PutDeclination(ctx, "47.50:19.03:2024", 4.37); err != nil {
		t.Fatalf("PutDeclination: %v", err)
	}
	value, ok, err := st.GetDeclination(ctx, "47.50:19.03:2024")
	if err != nil || !ok {
		t.Fatalf("GetDeclination: ok=%v err=%v", ok, err)
	}
	if value != 4.37 {
		t.Errorf("value = %v, want 4.37", value)
	}

	// Upsert replaces the stored value.
	if err := st.PutDeclination(ctx, "47.50:19.03:2024", 4.5); err != nil {
		t.Fatalf("second PutDeclination: %v", err)
	}
	value, _, err = st.GetDeclination(ctx, "47.50:19.03:2024")
	if err != nil {
		t.Fatalf("GetDeclination: %v", err)
	}
	if value != 4.5 {
		t.Errorf("value = %v, want the updated 4.5", value)
	}
}
