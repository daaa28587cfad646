package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/app"
	"paybatch/internal/core/apperror"
	"paybatch/internal/domain/auth"
	v1 "paybatch/internal/infrastructure/http/v1"
	"paybatch/internal/infrastructure/export"
	"paybatch/internal/infrastructure/http/v1/dto"
	"paybatch/internal/infrastructure/storage/memory"
	"paybatch/pkg/logger"
)

const (
	validCUIT = "20-12345678-6"
	validCBU  = "0170099220000003912346"
)

type apiFixture struct {
	t        *testing.T
	router   *gin.Engine
	admin    string
	operator string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	svc, err := app.NewServices(app.MemoryStores(memory.New()))
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	jwt := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	admin, _, err := jwt.IssueToken("admin-1", "Admin", []string{auth.RoleAdmin})
	require.NoError(t, err)
	operator, _, err := jwt.IssueToken("op-1", "Operator", []string{auth.RoleOperator})
	require.NoError(t, err)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       logger.Nop(),
		JWTValidator: jwt,
		Driver:       app.DriverMemory,
		Version:      "test",
		Allocator:    svc.Allocator,
		Ledger:       svc.Ledger,
		Batches:      svc.Batches,
		References:   svc.References,
		Contacts:     svc.Contacts,
	})

	return &apiFixture{t: t, router: router, admin: admin, operator: operator}
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_BatchLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/ranges", f.admin, dto.CreateRangeRequest{
		Category: "common", Priority: 1, Start: 91181244, End: 91181443,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/references", f.admin, dto.CreateReferenceRequest{
		Code: "labse0000118", Description: "Proveedores octubre",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ref := decode[dto.ReferenceResponse](t, w)
	assert.Equal(t, "LABSE0000118", ref.Code)

	w = f.do(http.MethodPost, "/api/v1/batches", f.operator, dto.CreateBatchRequest{
		ReferenceID: ref.ID, Branch: "001", DebitAccount: "0000003100012345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.BatchResponse](t, w)
	assert.Equal(t, "draft", created.State)
	assert.Equal(t, int64(1), created.SequenceNumber)

	items := []dto.AddItemRequest{
		{DocNumber: validCUIT, Beneficiary: "Proveedor Uno", Amount: "1000,50", PaymentMode: 6, IssueDate: "2026-10-15"},
		{DocNumber: validCUIT, Beneficiary: "Proveedor Dos", Amount: "200", PaymentMode: 6},
		{DocNumber: "30-71234567-1", Beneficiary: "Proveedor Tres", Amount: "300.25", PaymentMode: 2, AccountCode: validCBU},
	}
	for _, it := range items {
		w = f.do(http.MethodPost, "/api/v1/batches/"+created.ID+"/items", f.operator, it)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = f.do(http.MethodPost, "/api/v1/batches/"+created.ID+"/finalize", f.operator, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	final := decode[dto.BatchResponse](t, w)
	assert.Equal(t, "final", final.State)
	assert.Equal(t, "1500.75", final.Total)
	require.Len(t, final.Items, 3)
	assert.Equal(t, "91181244", final.Items[0].AccountOrCheck)
	assert.Equal(t, "91181245", final.Items[1].AccountOrCheck)
	assert.Equal(t, validCBU, final.Items[2].AccountOrCheck)
	assert.NotNil(t, final.Items[0].IssuedCheckID)
	assert.Nil(t, final.Items[2].IssuedCheckID)

	w = f.do(http.MethodGet, "/api/v1/checks?batchId="+created.ID, f.operator, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	checks := decode[dto.ListResponse[dto.CheckResponse]](t, w)
	require.Len(t, checks.Items, 2)
	assert.Equal(t, "pending_issue", checks.Items[0].State)

	w = f.do(http.MethodGet, "/api/v1/batches/"+created.ID+"/download", f.operator, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "planilla_LABSE0000118_00001.xlsx")

	rows, err := export.ReadWorkbook(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "91181244", rows[0].AccountOrCheck)
	assert.Equal(t, "6", rows[0].PaymentMode)
	assert.Equal(t, "15/10/2026", rows[0].IssueDate)
	assert.Equal(t, validCBU, rows[2].AccountOrCheck)

	w = f.do(http.MethodGet, "/api/v1/batches/"+created.ID, f.operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "downloaded", decode[dto.BatchResponse](t, w).State)

	w = f.do(http.MethodPost, "/api/v1/batches/"+created.ID+"/items", f.operator, items[0])
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeInvalidState, decode[dto.ErrorResponse](t, w).Code)
}

func TestRouter_Errors(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing token", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/batches", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperror.CodeUnauthorized, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/batches", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("operator cannot create ranges", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/ranges", f.operator, dto.CreateRangeRequest{
			Category: "deferred", Priority: 1, Start: 1, End: 10,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperror.CodeForbidden, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("checksum failure", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/validate/tax-id", f.operator, dto.ValidateRequest{Value: "20-12345678-0"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[dto.ErrorResponse](t, w)
		assert.Equal(t, apperror.CodeChecksum, resp.Code)
		assert.EqualValues(t, 6, resp.Details["expected"])
	})

	t.Run("valid account code", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/validate/account-code", f.operator, dto.ValidateRequest{Value: validCBU})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[dto.ValidateResponse](t, w)
		assert.True(t, resp.Valid)
		assert.Equal(t, "017 0099 2 2000000391234 6", resp.Formatted)
	})

	t.Run("finalize without ranges", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/references", f.admin, dto.CreateReferenceRequest{Code: "ABCDE0000001"})
		require.Equal(t, http.StatusCreated, w.Code)
		ref := decode[dto.ReferenceResponse](t, w)

		w = f.do(http.MethodPost, "/api/v1/batches", f.operator, dto.CreateBatchRequest{
			ReferenceID: ref.ID, Branch: "001", DebitAccount: "123",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		b := decode[dto.BatchResponse](t, w)

		w = f.do(http.MethodPost, "/api/v1/batches/"+b.ID+"/items", f.operator, dto.AddItemRequest{
			DocNumber: validCUIT, Beneficiary: "X", Amount: "10", PaymentMode: 8,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = f.do(http.MethodPost, "/api/v1/batches/"+b.ID+"/finalize", f.operator, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apperror.CodeExhausted, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("unknown batch", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/batches/00000000-0000-0000-0000-000000000001", f.operator, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("health is public", func(t *testing.T) {
		w := f.do(http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouter_UpdateAgendas(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/references", f.admin, dto.CreateReferenceRequest{Code: "ABCDE0000002", Description: "Enero"})
	require.Equal(t, http.StatusCreated, w.Code)
	ref := decode[dto.ReferenceResponse](t, w)

	w = f.do(http.MethodPut, "/api/v1/references/"+ref.ID, f.operator, dto.UpdateReferenceRequest{Description: "Febrero"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPut, "/api/v1/references/"+ref.ID, f.admin, dto.UpdateReferenceRequest{Description: "Febrero"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updatedRef := decode[dto.ReferenceResponse](t, w)
	assert.Equal(t, "ABCDE0000002", updatedRef.Code)
	assert.Equal(t, "Febrero", updatedRef.Description)

	w = f.do(http.MethodPost, "/api/v1/contacts", f.operator, dto.CreateContactRequest{
		Kind: "transfer", Name: "Proveedor", TaxID: validCUIT, AccountCode: validCBU,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ct := decode[dto.ContactResponse](t, w)

	w = f.do(http.MethodPut, "/api/v1/contacts/"+ct.ID, f.operator, dto.UpdateContactRequest{
		Name: "Proveedor SA", TaxID: validCUIT, AccountCode: "2850590940090418135201",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.ContactResponse](t, w)
	assert.Equal(t, "transfer", updated.Kind)
	assert.Equal(t, "Proveedor SA", updated.Name)
	assert.Equal(t, "2850590940090418135201", updated.AccountCode)

	w = f.do(http.MethodPut, "/api/v1/contacts/"+ct.ID, f.operator, dto.UpdateContactRequest{TaxID: validCUIT})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode[dto.ErrorResponse](t, w).Code)
}
