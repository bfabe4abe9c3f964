//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
)

func TestCategoryRepository_Save(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewCategoryRepository(db)

	category := &Category{Name: "Science"}
	id, err := repo.Save(context.Background(), category)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}
	if category.ID != id {
		t.Errorf("expected category.ID to be set to %d, got %d", id, category.ID)
	}
}

func TestCategoryRepository_GetByID(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	id, err := repo.Save(ctx, &Category{Name: "Movies"})
	if err != nil {
		t.Fatal(err)
	}

	found, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Name != "Movies" {
		t.Errorf("expected name 'Movies', got '%s'", found.Name)
	}

	// Test not found
	_, err = repo.GetByID(ctx, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_FindByName(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	if _, err := repo.Save(ctx, &Category{Name: "Sports"}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.FindByName(ctx, "Sports")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Name != "Sports" {
		t.Errorf("expected name 'Sports', got '%s'", found.Name)
	}

	if _, err := repo.FindByName(ctx, "Basketball"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_GetAll(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	if _, err := repo.Save(ctx, &Category{Name: "Music"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Save(ctx, &Category{Name: "Books"}); err != nil {
		t.Fatal(err)
	}

	categories, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Books" {
		t.Errorf("expected categories ordered by name, first is '%s'", categories[0].Name)
	}
}

func TestCategoryRepository_DeleteKeepsCourses(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	courses := NewSQLCourseRepository(db)

	catID, err := categories.Save(ctx, &Category{Name: "Programming"})
	if err != nil {
		t.Fatal(err)
	}
	course := &Course{Title: "Go", Description: "Gophers", CategoryID: &catID, Rating: 4}
	if err := courses.CreateCourse(ctx, course); err != nil {
		t.Fatal(err)
	}

	if err := categories.Delete(ctx, catID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := courses.GetCourseByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("expected course to survive category deletion, got %v", err)
	}
	if found.CategoryID != nil {
		t.Errorf("expected category to be nulled, got %d", *found.CategoryID)
	}
	if found.CategoryName != nil {
		t.Errorf("expected no category name, got %q", *found.CategoryName)
	}
}
