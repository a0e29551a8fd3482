package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_SearchPersons_DecodesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/buscar-persona" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["nombre"] != "GARCIA" {
			t.Errorf("unexpected search name: %v", req["nombre"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"resultados": []map[string]any{
				{"nombreCompleto": "JUAN GARCIA", "cargo": "PROMOTOR", "seccion": 412, "sp": 3, "curp": ""},
			},
			"total":   1,
			"mensaje": "1 resultado(s) encontrado(s)",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results, msg, err := c.SearchPersons(context.Background(), "GARCIA", 3)
	if err != nil {
		t.Fatalf("SearchPersons: %v", err)
	}
	if len(results) != 1 || results[0].FullName != "JUAN GARCIA" || results[0].Section != 412 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if msg != "1 resultado(s) encontrado(s)" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestClient_Submit_ConflictSentinels(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"folio taken", `{"success":false,"error":"El folio ya existe. Intenta de nuevo."}`, ErrFolioConflict},
		{"person registered", `{"success":false,"error":"Ya existe un registro de credencial para JUAN"}`, ErrPersonConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.Submit(context.Background(), Submission{Folio: "REG-20250115-00001"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClient_ValidateCURP_NotAuthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Usuario no encontrado en la base de datos"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.ValidateCURP(context.Background(), "PEGJ850101HDFRRN09")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestClient_Submit_TimeoutSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond) // exceed the client timeout
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.HTTPClient = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := c.Submit(context.Background(), Submission{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestClient_Submit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":       true,
			"message":       "Credencial registrada exitosamente",
			"folio":         "REG-20250115-00001",
			"fechaRegistro": time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC),
			"id":            "r-1",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Submit(context.Background(), Submission{Folio: "REG-20250115-00001"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Folio != "REG-20250115-00001" || res.ID != "r-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_GenericServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Error interno del servidor"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.RegisterPerson(context.Background(), "JUAN", "", 3)
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if errors.Is(err, ErrFolioConflict) || errors.Is(err, ErrPersonConflict) {
		t.Fatalf("500 must not map to a conflict sentinel: %v", err)
	}
}
