package models

import (
	"encoding/json"
	"fmt"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"log"
	"time"
)

const OUTCOME_HISTORY_KEY = "jobwaiter:history"

/**
a record of how one wait ended. These are written to the datastore after the wait resolves and are read
back only by `jobwait -last` / `jobwait -history`, never by a wait in progress
*/
type OutcomeRecord struct {
	SessionId uuid.UUID `json:"sessionId"`
	Namespace string    `json:"namespace"`
	JobName   string    `json:"jobName"`
	Outcome   string    `json:"outcome"`
	Success   bool      `json:"success"`
	ErrorMsg  string    `json:"errorMessage,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Ticks     int       `json:"ticks"`
}

func NewOutcomeRecord(sessionId uuid.UUID, namespace string, jobName string, outcome WaitOutcome, waitErr error, startTime time.Time, endTime time.Time, ticks int) OutcomeRecord {
	rec := OutcomeRecord{
		SessionId: sessionId,
		Namespace: namespace,
		JobName:   jobName,
		Outcome:   outcome.String(),
		Success:   outcome.IsSuccess() && waitErr == nil,
		StartTime: startTime,
		EndTime:   endTime,
		Ticks:     ticks,
	}
	if waitErr != nil {
		rec.ErrorMsg = waitErr.Error()
	}
	return rec
}

func outcomeKey(namespace string, jobName string) string {
	return fmt.Sprintf("jobwaiter:outcome:%s/%s", namespace, jobName)
}

/**
stores the record as the latest outcome for its job and pushes it onto the history list, which is trimmed
to historyLength entries. historyLength<=0 means don't trim.
*/
func RecordOutcome(rec *OutcomeRecord, historyLength int64, redisClient redis.Cmdable) error {
	content, marshalErr := json.Marshal(rec)
	if marshalErr != nil {
		log.Printf("ERROR RecordOutcome could not marshal record for %s: %s", rec.JobName, marshalErr)
		return marshalErr
	}

	_, setErr := redisClient.Set(outcomeKey(rec.Namespace, rec.JobName), string(content), -1).Result()
	if setErr != nil {
		log.Printf("ERROR RecordOutcome could not store outcome for %s: %s", rec.JobName, setErr)
		return setErr
	}

	_, pushErr := redisClient.LPush(OUTCOME_HISTORY_KEY, string(content)).Result()
	if pushErr != nil {
		log.Printf("ERROR RecordOutcome could not update history: %s", pushErr)
		return pushErr
	}

	if historyLength > 0 {
		_, trimErr := redisClient.LTrim(OUTCOME_HISTORY_KEY, 0, historyLength-1).Result()
		if trimErr != nil {
			log.Printf("ERROR RecordOutcome could not trim history: %s", trimErr)
			return trimErr
		}
	}
	return nil
}

/**
returns the most recent outcome recorded for the given job, or nil if there is none
*/
func GetLastOutcome(namespace string, jobName string, redisClient redis.Cmdable) (*OutcomeRecord, error) {
	content, getErr := redisClient.Get(outcomeKey(namespace, jobName)).Result()
	if getErr != nil {
		if getErr == redis.Nil {
			return nil, nil
		}
		return nil, getErr
	}

	var rec OutcomeRecord
	unmarshalErr := json.Unmarshal([]byte(content), &rec)
	if unmarshalErr != nil {
		log.Printf("ERROR GetLastOutcome stored data for %s is corrupted: %s", jobName, unmarshalErr)
		return nil, unmarshalErr
	}
	return &rec, nil
}

/**
returns up to `limit` history entries, newest first. Entries that can't be decoded are skipped.
*/
func ListOutcomeHistory(limit int64, redisClient redis.Cmdable) ([]OutcomeRecord, error) {
	if limit <= 0 {
		return []OutcomeRecord{}, nil
	}
	entries, listErr := redisClient.LRange(OUTCOME_HISTORY_KEY, 0, limit-1).Result()
	if listErr != nil {
		return nil, listErr
	}

	rtn := make([]OutcomeRecord, 0, len(entries))
	for _, entry := range entries {
		var rec OutcomeRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			log.Printf("WARNING ListOutcomeHistory skipping corrupted entry: %s", err)
			continue
		}
		rtn = append(rtn, rec)
	}
	return rtn, nil
}
