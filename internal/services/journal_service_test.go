package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestJournalInsight(t *testing.T) {
	model := &fakeJournalModel{reply: "That sounds meaningful."}
	svc := &JournalService{Model: model, MaxContentRunes: 10000}

	got, err := svc.Insight(context.Background(), "I walked by the sea.")
	if err != nil || got != "That sounds meaningful." || model.got != "I walked by the sea." {
		t.Fatalf("Insight = %q, %v (model got %q)", got, err, model.got)
	}
}

func TestJournalInsight_Validation(t *testing.T) {
	svc := &JournalService{Model: &fakeJournalModel{}, MaxContentRunes: 10}
	if _, err := svc.Insight(context.Background(), " \n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank err = %v", err)
	}
	if _, err := svc.Insight(context.Background(), strings.Repeat("a", 11)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("long err = %v", err)
	}
}

func TestJournalInsight_ModelError(t *testing.T) {
	boom := errors.New("boom")
	svc := &JournalService{Model: &fakeJournalModel{err: boom}}
	if _, err := svc.Insight(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
