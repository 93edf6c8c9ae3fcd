package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func positionWithNullableFields() *Position {
	notes := "keep an eye on earnings"
	price := decimal.RequireFromString("1.25")
	return &Position{
		Notes:              &notes,
		Tags:               StringList{"wheel", "weekly"},
		ClosePricePerShare: &price,
	}
}

func TestPositionUpdateExplicitNullClearsNullableFields(t *testing.T) {
	p := positionWithNullableFields()

	var update PositionUpdate
	if err := json.Unmarshal([]byte(`{"notes":null,"tags":null,"close_price_per_share":null}`), &update); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	update.Apply(p)

	if p.Notes != nil {
		t.Fatalf("explicit null should clear notes, still %q", *p.Notes)
	}
	if p.Tags != nil {
		t.Fatalf("explicit null should clear tags, still %v", p.Tags)
	}
	if p.ClosePricePerShare != nil {
		t.Fatalf("explicit null should clear close price, still %s", p.ClosePricePerShare)
	}
}

func TestPositionUpdateAbsentKeysLeaveFieldsUntouched(t *testing.T) {
	p := positionWithNullableFields()

	var update PositionUpdate
	if err := json.Unmarshal([]byte(`{}`), &update); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	update.Apply(p)

	if p.Notes == nil || *p.Notes != "keep an eye on earnings" {
		t.Fatalf("absent key must not touch notes, got %v", p.Notes)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("absent key must not touch tags, got %v", p.Tags)
	}
	if p.ClosePricePerShare == nil {
		t.Fatal("absent key must not touch close price")
	}
}

func TestPositionUpdateProvidedValuesOverwrite(t *testing.T) {
	p := positionWithNullableFields()

	var update PositionUpdate
	if err := json.Unmarshal([]byte(`{"notes":"rolled once","tags":["csp"],"close_price_per_share":"0.45"}`), &update); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	update.Apply(p)

	if p.Notes == nil || *p.Notes != "rolled once" {
		t.Fatalf("notes not applied, got %v", p.Notes)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "csp" {
		t.Fatalf("tags not applied, got %v", p.Tags)
	}
	if p.ClosePricePerShare == nil || !p.ClosePricePerShare.Equal(decimal.RequireFromString("0.45")) {
		t.Fatalf("close price not applied, got %v", p.ClosePricePerShare)
	}
}

func TestAccountUpdateTaxTreatmentNullVsAbsent(t *testing.T) {
	treatment := "roth"
	account := &Account{Name: "IRA", Broker: BrokerMerrill, TaxTreatment: &treatment}

	var untouched AccountUpdate
	if err := json.Unmarshal([]byte(`{"name":"Renamed"}`), &untouched); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	untouched.Apply(account)
	if account.TaxTreatment == nil || *account.TaxTreatment != "roth" {
		t.Fatalf("absent key must not touch tax treatment, got %v", account.TaxTreatment)
	}

	var cleared AccountUpdate
	if err := json.Unmarshal([]byte(`{"tax_treatment":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	cleared.Apply(account)
	if account.TaxTreatment != nil {
		t.Fatalf("explicit null should clear tax treatment, still %q", *account.TaxTreatment)
	}
}
