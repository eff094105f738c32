package paths

import (
	"testing"
)

func TestResolveCollisions_NoCollisions(t *testing.T) {
	targets := []DownloadTarget{
		{UUID: "ABC123", Filename: "base.step", LocalPath: "/dest/base.step", Size: 100},
		{UUID: "DEF456", Filename: "lid.step", LocalPath: "/dest/lid.step", Size: 200},
		{UUID: "GHI789", Filename: "seal.step", LocalPath: "/dest/seal.step", Size: 300},
	}

	result, count := ResolveCollisions(targets)

	if count != 0 {
		t.Errorf("expected 0 collisions, got %d", count)
	}
	if result[0].LocalPath != "/dest/base.step" {
		t.Errorf("expected /dest/base.step, got %s", result[0].LocalPath)
	}
	if result[1].LocalPath != "/dest/lid.step" {
		t.Errorf("expected /dest/lid.step, got %s", result[1].LocalPath)
	}
}

func TestResolveCollisions_TwoDuplicates(t *testing.T) {
	targets := []DownloadTarget{
		{UUID: "ABC123", Filename: "housing.step", LocalPath: "/dest/housing.step"},
		{UUID: "DEF456", Filename: "housing.step", LocalPath: "/dest/housing.step"},
	}

	result, count := ResolveCollisions(targets)

	if count != 2 {
		t.Errorf("expected 2 collisions, got %d", count)
	}
	if result[0].LocalPath != "/dest/housing_ABC123.step" {
		t.Errorf("expected /dest/housing_ABC123.step, got %s", result[0].LocalPath)
	}
	if result[1].LocalPath != "/dest/housing_DEF456.step" {
		t.Errorf("expected /dest/housing_DEF456.step, got %s", result[1].LocalPath)
	}
}

func TestResolveCollisions_NoExtension(t *testing.T) {
	targets := []DownloadTarget{
		{UUID: "A", Filename: "README", LocalPath: "/out/README"},
		{UUID: "B", Filename: "README", LocalPath: "/out/README"},
	}

	result, count := ResolveCollisions(targets)

	if count != 2 {
		t.Errorf("expected 2 collisions, got %d", count)
	}
	if result[0].LocalPath != "/out/README_A" {
		t.Errorf("expected /out/README_A, got %s", result[0].LocalPath)
	}
	if result[1].LocalPath != "/out/README_B" {
		t.Errorf("expected /out/README_B, got %s", result[1].LocalPath)
	}
}

func TestResolveCollisions_Empty(t *testing.T) {
	result, count := ResolveCollisions(nil)
	if count != 0 || len(result) != 0 {
		t.Errorf("expected empty result, got %v (%d collisions)", result, count)
	}
}
