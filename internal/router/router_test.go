package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"idhealth/internal/adapters/model"
	"idhealth/internal/adapters/storage/memory"
	"idhealth/internal/ports/pod"
	"idhealth/internal/router"
)

const (
	aliceWebID = "https://alice.example/profile/card#me"
	bobWebID   = "https://bob.example/profile/card#me"
	carolWebID = "https://carol.example/profile/card#me"

	aliceStorage = "https://alice.example/"
)

func seedUser(store *memory.PodStore, webID, storage, name, role string) {
	card := pod.NewDataset(webID[:len(webID)-len("#me")])
	card.Ensure(webID).Set(pod.PimStorage, pod.IRI(storage))
	store.Seed(card)

	prof := pod.NewDataset(storage + "profile")
	me := prof.Ensure(webID)
	me.Set(pod.VCardFn, pod.String(name))
	if role != "" {
		me.Set(pod.VCardRole, pod.String(role))
	}
	store.Seed(prof)
}

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var trains atomic.Int32
	modelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			_, _ = w.Write([]byte(`{"prediction": 1.4}`))
		case "/train":
			trains.Add(1)
			_, _ = w.Write([]byte(`{"message": "Model trained successfully"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(modelSrv.Close)

	store := memory.NewPodStore()
	seedUser(store, aliceWebID, aliceStorage, "Alice", "Patient")
	seedUser(store, bobWebID, "https://bob.example/", "Dr. Bob", "doctor")
	seedUser(store, carolWebID, "https://carol.example/", "Carol", "")

	mc := model.NewClient(model.Config{PredictURL: modelSrv.URL, TrainURL: modelSrv.URL, Timeout: 2 * time.Second})
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Store:        store,
		Predictor:    mc,
		Trainer:      mc,

		DoctorPodHosts: []string{"alice.example"},
	}))
	t.Cleanup(ts.Close)
	return ts, &trains
}

func TestHTTP_EndToEnd_PatientFlow(t *testing.T) {
	ts, trains := newTestServer(t)
	today := time.Now().Format("2006-01-02")

	// 1) Health
	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}

	// 2) Perfil
	{
		st, body := doReq(t, ts.URL, "GET", "/me/profile", aliceWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 profile, got %d body=%s", st, string(body))
		}
		var p map[string]string
		_ = json.Unmarshal(body, &p)
		if p["role"] != "patient" || p["storage_location"] != aliceStorage || p["name"] != "Alice" {
			t.Fatalf("unexpected profile %v", p)
		}
	}

	// 3) Sin mediciones todavía
	if n := count(t, ts.URL); n != 0 {
		t.Fatalf("expected 0 measurements, got %d", n)
	}

	// 4) Ficha de paciente
	{
		st, _ := doReq(t, ts.URL, "GET", "/me/patient", aliceWebID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 before saving record, got %d", st)
		}
		st, body := doReq(t, ts.URL, "PUT", "/me/patient", aliceWebID, map[string]any{
			"given_name":    "Alice",
			"family_name":   "Rossi",
			"birth_date":    "1990-04-12",
			"diabetes_type": "type1",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 save record, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/me/patient", aliceWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get record, got %d body=%s", st, string(body))
		}
	}

	// 5) Alta de medición y listado
	recordID := insertMeasurement(t, ts.URL, 180, "G at 13:00")
	{
		st, body := doReq(t, ts.URL, "GET", "/measurements", aliceWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0]["id"] != recordID {
			t.Fatalf("unexpected list %s", string(body))
		}
	}
	if n := count(t, ts.URL); n != 1 {
		t.Fatalf("expected 1 measurement, got %d", n)
	}

	// 6) Predicción con dosis calculada
	{
		st, body := doReq(t, ts.URL, "POST", "/predictions", aliceWebID, map[string]any{"time_slot": "G at 13:00"})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 predict, got %d body=%s", st, string(body))
		}
		var res map[string]any
		_ = json.Unmarshal(body, &res)
		if res["advice"] != "calculated-dose" || res["model_prediction"] != 1.4 || res["saved"] == nil {
			t.Fatalf("unexpected predict result %s", string(body))
		}
	}
	if st, _ := doReq(t, ts.URL, "POST", "/predictions", aliceWebID, map[string]any{"time_slot": "G at 09:30"}); st != http.StatusNotFound {
		t.Fatalf("expected 404 predicting empty slot, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/predictions", aliceWebID, map[string]any{"time_slot": "lunch"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 unknown slot, got %d", st)
	}

	// 7) Entrenar con un solo valor: 422 y sin llamada
	if st, _ := doReq(t, ts.URL, "POST", "/training", aliceWebID, nil); st != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 with insufficient data, got %d", st)
	}
	if trains.Load() != 0 {
		t.Fatalf("train must not be called with insufficient data")
	}

	// 8) Completar las seis franjas y entrenar
	for slot, v := range map[string]float64{
		"G at Waking": 120, "G at 09:30": 140, "G at 15:00": 160, "G at 18:00": 200, "G at 20:00": 220,
	} {
		insertMeasurement(t, ts.URL, v, slot)
		if st, body := doReq(t, ts.URL, "POST", "/predictions", aliceWebID, map[string]any{"time_slot": slot}); st != http.StatusCreated {
			t.Fatalf("expected 201 predict %s, got %d body=%s", slot, st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/predictions/chart?date="+today, aliceWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 chart, got %d", st)
		}
		var pts []map[string]any
		_ = json.Unmarshal(body, &pts)
		if len(pts) != 6 {
			t.Fatalf("expected 6 chart points, got %d", len(pts))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/training", aliceWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 training, got %d body=%s", st, string(body))
		}
		if trains.Load() != 1 {
			t.Fatalf("expected one train call, got %d", trains.Load())
		}
		st, body = doReq(t, ts.URL, "GET", "/training/events", aliceWebID, nil)
		var ev struct {
			Events []string `json:"events"`
		}
		_ = json.Unmarshal(body, &ev)
		if st != http.StatusOK || len(ev.Events) != 1 {
			t.Fatalf("expected one training event, got %d body=%s", st, string(body))
		}
	}

	// 9) Borrado
	if st, _ := doReq(t, ts.URL, "DELETE", "/measurements/"+today+"/"+recordID, aliceWebID, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 delete, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "DELETE", "/measurements/"+today+"/"+recordID, aliceWebID, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", st)
	}
	if n := count(t, ts.URL); n != 5 {
		t.Fatalf("expected 5 measurements after delete, got %d", n)
	}
}

func TestHTTP_RolesAndForcedLogout(t *testing.T) {
	ts, _ := newTestServer(t)

	// Sin identidad
	if st, _ := doReq(t, ts.URL, "GET", "/me/profile", "", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}

	// Sin rol => 401 + logout forzado
	{
		req, _ := http.NewRequest("GET", ts.URL+"/measurements/count", nil)
		req.Header.Set("X-Debug-User-ID", carolWebID)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		_ = res.Body.Close()
		if res.StatusCode != http.StatusUnauthorized || res.Header.Get("X-Force-Logout") != "true" {
			t.Fatalf("expected 401 with X-Force-Logout, got %d %q", res.StatusCode, res.Header.Get("X-Force-Logout"))
		}
	}

	// Doctor no usa rutas de paciente
	if st, _ := doReq(t, ts.URL, "GET", "/measurements", bobWebID, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 doctor on patient route, got %d", st)
	}

	// Paciente no usa rutas de doctor
	if st, _ := doReq(t, ts.URL, "GET", "/doctor/measurements?storage="+aliceStorage, aliceWebID, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 patient on doctor route, got %d", st)
	}

	// Doctor sin autorización de la paciente
	insertMeasurement(t, ts.URL, 95, "G at Waking")
	if st, _ := doReq(t, ts.URL, "GET", "/doctor/measurements?storage="+aliceStorage, bobWebID, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 before the patient grants access, got %d", st)
	}

	// La paciente autoriza a Bob en su ficha
	if st, body := doReq(t, ts.URL, "PUT", "/me/patient", aliceWebID, map[string]any{
		"given_name":  "Alice",
		"family_name": "Rossi",
		"doctors":     []string{bobWebID},
	}); st != http.StatusOK {
		t.Fatalf("expected 200 saving grant, got %d body=%s", st, string(body))
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/doctor/measurements?storage="+aliceStorage, bobWebID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 doctor list, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %s", string(body))
		}
	}
	if st, _ := doReq(t, ts.URL, "GET", "/doctor/measurements?storage=alice", bobWebID, nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 relative storage, got %d", st)
	}
	// Hosts fuera de la lista no se consultan
	for _, storage := range []string{"https://carol.example/", "http://127.0.0.1:6379/"} {
		st, _ := doReq(t, ts.URL, "GET", "/doctor/measurements?storage="+storage, bobWebID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for %s, got %d", storage, st)
		}
	}

	// Basal: 200 y nada guardado
	{
		st, body := doReq(t, ts.URL, "POST", "/predictions", aliceWebID, map[string]any{"time_slot": "G at Waking"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 basal advice, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/predictions", aliceWebID, nil)
		if st != http.StatusOK || string(bytes.TrimSpace(body)) != "[]" {
			t.Fatalf("expected no saved predictions, got %d %s", st, string(body))
		}
	}
}

// -------------------------
// Helpers
// -------------------------

func count(t *testing.T, baseURL string) int {
	t.Helper()
	st, body := doReq(t, baseURL, "GET", "/measurements/count", aliceWebID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 count, got %d body=%s", st, string(body))
	}
	var out struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(body, &out)
	return out.Total
}

func insertMeasurement(t *testing.T, baseURL string, value float64, slot string) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/measurements", aliceWebID, map[string]any{
		"value":     value,
		"time_slot": slot,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 insert, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &out)
	if out.ID == "" {
		t.Fatalf("missing id in %s", string(body))
	}
	return out.ID
}

func doReq(t *testing.T, baseURL, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}
