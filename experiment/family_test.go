package experiment

import (
	"reflect"
	"testing"

	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/tuning"
)

func TestFamilyNamesOrder(t *testing.T) {
	want := []string{"linear", "ridge", "lasso", "tree", "knn", "svr"}
	if got := FamilyNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FamilyNames() = %v, want %v", got, want)
	}
}

func TestOnlyTreeIsTuned(t *testing.T) {
	for _, f := range AllFamilies() {
		tuned := f.Name == "tree"
		if f.Tuned() != tuned {
			t.Errorf("family %q: Tuned() = %v, want %v", f.Name, f.Tuned(), tuned)
		}
	}
}

func TestTreeGridSize(t *testing.T) {
	var found Family
	for _, f := range AllFamilies() {
		if f.Name == "tree" {
			found = f
		}
	}
	if found.Name == "" {
		t.Fatal("tree family missing")
	}

	if got := found.Grid.Size(); got != 135 {
		t.Errorf("tree grid size = %d, want 135", got)
	}
	if got := found.Space.Size(); got != 600 {
		t.Errorf("tree space size = %d, want 600", got)
	}
}

func TestTreeFamilyBuildsFromParams(t *testing.T) {
	var tree Family
	for _, f := range AllFamilies() {
		if f.Name == "tree" {
			tree = f
		}
	}

	if m := tree.New(nil); m == nil {
		t.Fatal("New(nil) = nil, want default regressor")
	}

	p := tuning.Params{
		"max_depth":         5,
		"min_samples_split": 2,
		"min_samples_leaf":  1,
		"max_features":      "sqrt",
	}
	if m := tree.New(p); m == nil {
		t.Fatal("New(params) = nil, want configured regressor")
	}
}

func TestResolveFamilies(t *testing.T) {
	families, err := ResolveFamilies([]string{"tree", "linear"})
	if err != nil {
		t.Fatalf("ResolveFamilies() error = %v", err)
	}
	if len(families) != 2 || families[0].Name != "tree" || families[1].Name != "linear" {
		t.Errorf("resolved order = %v, want [tree linear]", families)
	}
}

func TestResolveFamiliesUnknownName(t *testing.T) {
	_, err := ResolveFamilies([]string{"linear", "boosting"})
	if err == nil {
		t.Fatal("ResolveFamilies() = nil error for unknown family")
	}
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error %v is not a ValidationError", err)
	}
}
