package order

import (
	"errors"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// PackageItem is a bundle of tests sold together (for example a full-body checkup).
// Its nested tests take part in processing and report roll-ups exactly like direct tests.
type PackageItem struct {
	id               kernel.UUID
	catalogPackageID string
	name             string
	tests            []*TestItem
}

// PackageItemState is the persistable form of a PackageItem.
type PackageItemState struct {
	ID               kernel.UUID
	CatalogPackageID string
	Name             string
	Tests            []TestItemState
}

// NewPackageItem creates a package line item. A package must contain at least one test.
func NewPackageItem(catalogPackageID, name string, tests []*TestItem) (*PackageItem, error) {
	item := &PackageItem{
		id:               kernel.NewUUID(),
		catalogPackageID: strings.TrimSpace(catalogPackageID),
		name:             strings.TrimSpace(name),
		tests:            tests,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// RestorePackageItem rebuilds a PackageItem and its nested tests from storage.
func RestorePackageItem(state PackageItemState) (*PackageItem, error) {
	tests := make([]*TestItem, 0, len(state.Tests))
	for _, ts := range state.Tests {
		t, err := RestoreTestItem(ts)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}

	item := &PackageItem{
		id:               state.ID,
		catalogPackageID: state.CatalogPackageID,
		name:             state.Name,
		tests:            tests,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (p *PackageItem) validate() error {
	var errList []error
	if err := p.id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if p.name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("package name"))
	}
	if len(p.tests) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("package tests"))
	}
	for _, t := range p.tests {
		if t == nil {
			errList = append(errList, errs.NewValueIsRequiredError("package test"))
		}
	}
	return errors.Join(errList...)
}

func (p *PackageItem) ID() kernel.UUID {
	return p.id
}

func (p *PackageItem) CatalogPackageID() string {
	return p.catalogPackageID
}

func (p *PackageItem) Name() string {
	return p.name
}

// Tests returns the nested tests in order. The slice is a copy; the items are shared.
func (p *PackageItem) Tests() []*TestItem {
	out := make([]*TestItem, len(p.tests))
	copy(out, p.tests)
	return out
}

// State returns a deep copy suitable for persistence.
func (p *PackageItem) State() PackageItemState {
	tests := make([]TestItemState, 0, len(p.tests))
	for _, t := range p.tests {
		tests = append(tests, t.State())
	}
	return PackageItemState{
		ID:               p.id,
		CatalogPackageID: p.catalogPackageID,
		Name:             p.name,
		Tests:            tests,
	}
}
