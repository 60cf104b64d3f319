package models

import (
	"errors"
	"github.com/alicebob/miniredis"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"testing"
	"time"
)

func TestRecordOutcome(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	startTime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewOutcomeRecord(uuid.MustParse("3C2F5A51-6D5C-4E43-9A3B-3D8E0B0C4D11"), "default", "migrate-db", OUTCOME_COMPLETED, nil, startTime, startTime.Add(10*time.Second), 10)

	recErr := RecordOutcome(&rec, 2, testClient)
	if recErr != nil {
		t.Fatalf("RecordOutcome failed unexpectedly: %s", recErr)
	}

	if !s.Exists("jobwaiter:outcome:default/migrate-db") {
		t.Error("RecordOutcome did not write the per-job key")
	}

	result, getErr := GetLastOutcome("default", "migrate-db", testClient)
	if getErr != nil {
		t.Fatalf("GetLastOutcome failed unexpectedly: %s", getErr)
	}
	if result == nil {
		t.Fatal("GetLastOutcome returned nil for a stored record")
	}
	if result.Outcome != "Completed" || !result.Success || result.Ticks != 10 || result.SessionId != rec.SessionId {
		t.Errorf("GetLastOutcome returned wrong data: %s", spew.Sdump(result))
	}
	if !result.StartTime.Equal(startTime) {
		t.Errorf("expected start time %s, got %s", startTime, result.StartTime)
	}
}

func TestRecordOutcomeTrimsHistory(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	now := time.Now()
	for i, jobName := range []string{"first", "second", "third"} {
		rec := NewOutcomeRecord(uuid.New(), "ns", jobName, OUTCOME_FAILED, errors.New("boom"), now, now, i)
		if recErr := RecordOutcome(&rec, 2, testClient); recErr != nil {
			t.Fatalf("RecordOutcome failed unexpectedly: %s", recErr)
		}
	}

	rawList, listErr := s.List(OUTCOME_HISTORY_KEY)
	if listErr != nil {
		t.Fatalf("could not read history list: %s", listErr)
	}
	if len(rawList) != 2 {
		t.Errorf("expected history to be trimmed to 2 entries, got %d", len(rawList))
	}

	history, histErr := ListOutcomeHistory(10, testClient)
	if histErr != nil {
		t.Fatalf("ListOutcomeHistory failed unexpectedly: %s", histErr)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %s", spew.Sdump(history))
	}
	if history[0].JobName != "third" || history[1].JobName != "second" {
		t.Errorf("history is in the wrong order: %s", spew.Sdump(history))
	}
	if history[0].Success || history[0].ErrorMsg != "boom" {
		t.Errorf("failed record not stored correctly: %s", spew.Sdump(history[0]))
	}
}

func TestGetLastOutcomeMissing(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	result, getErr := GetLastOutcome("default", "never-ran", testClient)
	if getErr != nil {
		t.Errorf("GetLastOutcome should not error for a missing job, got %s", getErr)
	}
	if result != nil {
		t.Errorf("expected nil for a missing job, got %s", spew.Sdump(result))
	}
}

func TestListOutcomeHistorySkipsCorrupted(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	s.Lpush(OUTCOME_HISTORY_KEY, `{"jobName":"good","outcome":"Failed"}`)
	s.Lpush(OUTCOME_HISTORY_KEY, "not json")

	history, histErr := ListOutcomeHistory(5, testClient)
	if histErr != nil {
		t.Fatalf("ListOutcomeHistory failed unexpectedly: %s", histErr)
	}
	if len(history) != 1 || history[0].JobName != "good" {
		t.Errorf("expected only the decodable entry, got %s", spew.Sdump(history))
	}
}
