package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/triage/pkg/domain"
)

func newTestDirectory(t *testing.T, h http.HandlerFunc) *Directory {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewDirectory(NewClient(srv.URL+"/", "anon-key", WithRetry(2, time.Millisecond)))
}

func TestFindDoctors_BySpecialization(t *testing.T) {
	var gotPath, gotRole, gotSpec, gotKey, gotAuth string
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRole = r.URL.Query().Get("role")
		gotSpec = r.URL.Query().Get("or")
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"id":"d1","full_name":"Dr. Ana Costa","email":"ana@example.com","specialization":"Mental Health"}]`))
	})

	got, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{Specialization: domain.MentalHealth})
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/profiles", gotPath)
	assert.Equal(t, "eq.doctor", gotRole)
	assert.Equal(t, "(specialization.ilike.*mental health*)", gotSpec)
	assert.Equal(t, "anon-key", gotKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, []domain.Doctor{{ID: "d1", FullName: "Dr. Ana Costa", Email: "ana@example.com", Specialization: "Mental Health"}}, got)
}

func TestFindDoctors_SpecializationMatchesTagOrDisplayName(t *testing.T) {
	var gotFilter string
	var hasColumnFilter bool
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("or")
		_, hasColumnFilter = r.URL.Query()["specialization"]
		w.Write([]byte(`[{"id":"d7","full_name":"Dr. Paul Reyes","specialization":"General Practitioner"}]`))
	})

	got, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{Specialization: domain.General})
	require.NoError(t, err)

	assert.Equal(t, "(specialization.ilike.*general*,specialization.ilike.*General Practice*)", gotFilter)
	assert.False(t, hasColumnFilter, "the or-group replaces the column filter")
	require.Len(t, got, 1)
	assert.Equal(t, "General Practitioner", got[0].Specialization)
}

func TestSpecializationFilter_SingleTermWhenTagIsDisplayName(t *testing.T) {
	assert.Equal(t, "(specialization.ilike.*cardiology*)", specializationFilter(domain.Cardiology))
}

func TestFindDoctors_ByConcernFollowsProfile(t *testing.T) {
	var gotPath, gotFilter, gotSelect string
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("concern_id")
		gotSelect = r.URL.Query().Get("select")
		w.Write([]byte(`[
			{"doctor_id":"d1","profiles":{"id":"d1","full_name":"Dr. A","specialization":"Neurology"}},
			{"doctor_id":"d2","profiles":null}
		]`))
	})

	got, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{ConcernID: "c-42"})
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/doctor_concerns", gotPath)
	assert.Equal(t, "eq.c-42", gotFilter)
	assert.Equal(t, "doctor_id,profiles:doctor_id(id,full_name,email,specialization)", gotSelect)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. A", got[0].FullName)
}

func TestFindDoctors_ByCondition(t *testing.T) {
	var gotPath, gotFilter string
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("disease_id")
		w.Write([]byte(`[]`))
	})

	got, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{ConditionID: "7"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "/rest/v1/doctor_diseases", gotPath)
	assert.Equal(t, "eq.7", gotFilter)
}

func TestFindDoctors_EmptyQuery(t *testing.T) {
	var calls atomic.Int32
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	got, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, calls.Load())
}

func TestSelect_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	})

	_, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{Specialization: domain.General})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSelect_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid API key"}`))
	})

	_, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{Specialization: domain.General})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid API key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSelect_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	dir := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := dir.FindDoctors(context.Background(), domain.DoctorQuery{ConcernID: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}
