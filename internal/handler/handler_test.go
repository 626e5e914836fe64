package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, status, rec.Body)
	}
	if code == "" {
		return
	}
	if got := decodeBody(t, rec)["code"]; got != code {
		t.Fatalf("code = %v, want %s (%s)", got, code, rec.Body)
	}
}

type fakeReservations struct {
	submitted   *service.ReservationInput
	updatedID   uint64
	statusInput service.StatusInput
	listStatus  string
	count       int
	list        []model.Reservation
	err         error
}

func (f *fakeReservations) Submit(_ context.Context, in service.ReservationInput) (*model.Reservation, error) {
	f.submitted = &in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Reservation{ID: 1, Name: in.Name, Status: model.StatusPending}, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id uint64, in service.StatusInput) (*model.Reservation, error) {
	f.updatedID, f.statusInput = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Reservation{ID: id, Status: model.ReservationStatus(in.Status)}, nil
}

func (f *fakeReservations) PendingCount(context.Context) (int, error) { return f.count, f.err }

func (f *fakeReservations) List(_ context.Context, status string) ([]model.Reservation, error) {
	f.listStatus = status
	return f.list, f.err
}

func (f *fakeReservations) Get(_ context.Context, id uint64) (*model.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Reservation{ID: id}, nil
}

func (f *fakeReservations) Delete(_ context.Context, id uint64) error { f.updatedID = id; return f.err }

func reservationEcho(f *fakeReservations) *echo.Echo {
	h := NewReservationHandler(f)
	e := echo.New()
	e.POST("/api/reservations", h.Create)
	e.GET("/api/reservations", h.List)
	e.PUT("/api/reservations", h.UpdateStatus)
	e.PUT("/api/reservations/:id", h.UpdateStatus)
	e.GET("/api/reservations/pending-count", h.PendingCount)
	e.DELETE("/api/reservations/:id", h.Delete)
	return e
}

func TestCreateReservation(t *testing.T) {
	f := &fakeReservations{}
	e := reservationEcho(f)
	rec := do(e, http.MethodPost, "/api/reservations",
		`{"name":"Jane Doe","email":"JANE@X.COM","phone":"555-1111","date":"2025-06-01","time":"19:00","guests":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if f.submitted == nil || f.submitted.Guests != "4" || f.submitted.Email != "JANE@X.COM" {
		t.Fatalf("submitted = %+v", f.submitted)
	}
	if got := decodeBody(t, rec)["status"]; got != "pending" {
		t.Fatalf("status field = %v", got)
	}
}

func TestCreateReservationRejectsBadBodies(t *testing.T) {
	e := reservationEcho(&fakeReservations{})
	for name, body := range map[string]string{
		"unknown field": `{"name":"a","extra":true}`,
		"not json":      `{name:`,
		"trailing data": `{"name":"a"} {"name":"b"}`,
	} {
		t.Run(name, func(t *testing.T) {
			wantError(t, do(e, http.MethodPost, "/api/reservations", body), http.StatusBadRequest, codeInvalidBody)
		})
	}
	wantError(t, do(e, http.MethodPost, "/api/reservations", ""), http.StatusBadRequest, codeInvalidBody)
}

func TestCreateReservationValidationError(t *testing.T) {
	f := &fakeReservations{err: &service.ValidationError{Code: service.CodeMissingRequiredFields, Message: "Missing", Fields: []string{"phone"}}}
	rec := do(reservationEcho(f), http.MethodPost, "/api/reservations", `{"name":"a"}`)
	wantError(t, rec, http.StatusBadRequest, service.CodeMissingRequiredFields)
	if !strings.Contains(rec.Body.String(), `"fields":["phone"]`) {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestUpdateStatusReadsIDFromPathOrQuery(t *testing.T) {
	f := &fakeReservations{}
	e := reservationEcho(f)
	for _, target := range []string{"/api/reservations/5", "/api/reservations?id=5"} {
		f.updatedID = 0
		rec := do(e, http.MethodPut, target, `{"status":"cancelled","alternativeTimes":["6:30 PM"]}`)
		if rec.Code != http.StatusOK || f.updatedID != 5 {
			t.Fatalf("%s: status = %d id = %d (%s)", target, rec.Code, f.updatedID, rec.Body)
		}
		if len(f.statusInput.AlternativeTimes) != 1 {
			t.Fatalf("alternatives = %v", f.statusInput.AlternativeTimes)
		}
	}
	for _, target := range []string{"/api/reservations/abc", "/api/reservations/0", "/api/reservations"} {
		wantError(t, do(e, http.MethodPut, target, `{"status":"accepted"}`), http.StatusBadRequest, codeInvalidID)
	}
}

func TestReservationErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{service.ErrReservationNotFound, http.StatusNotFound, `"error":"Reservation not found"`},
		{&service.ValidationError{Code: service.CodeInvalidStatus, Message: "bad"}, http.StatusBadRequest, `"code":"INVALID_STATUS"`},
		{errors.New("boom"), http.StatusInternalServerError, `"error":"Internal server error: boom"`},
	}
	for _, tc := range cases {
		rec := do(reservationEcho(&fakeReservations{err: tc.err}), http.MethodPut, "/api/reservations/1", `{"status":"accepted"}`)
		if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%v: %d %s", tc.err, rec.Code, rec.Body)
		}
	}
}

func TestPendingCountAndList(t *testing.T) {
	f := &fakeReservations{count: 3}
	e := reservationEcho(f)
	rec := do(e, http.MethodGet, "/api/reservations/pending-count", "")
	if strings.TrimSpace(rec.Body.String()) != `{"count":3}` {
		t.Fatalf("body = %s", rec.Body)
	}
	if rec.Header().Get(echo.HeaderCacheControl) != "no-store" {
		t.Fatal("pending count must not be cacheable")
	}

	rec = do(e, http.MethodGet, "/api/reservations?status=accepted", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("list = %d %s", rec.Code, rec.Body)
	}
	if f.listStatus != "accepted" {
		t.Fatalf("status filter = %q", f.listStatus)
	}
}

func TestDeleteReservation(t *testing.T) {
	f := &fakeReservations{}
	rec := do(reservationEcho(f), http.MethodDelete, "/api/reservations/9", "")
	if rec.Code != http.StatusNoContent || f.updatedID != 9 {
		t.Fatalf("delete = %d id=%d", rec.Code, f.updatedID)
	}
}

type fakeAccounts struct {
	signedIn  *service.SignInInput
	signedOut string
	err       error
}

func (f *fakeAccounts) SignUp(context.Context, service.SignUpInput, service.ClientMeta) (*service.IssuedSession, error) {
	return nil, service.ErrSignupDisabled
}

func (f *fakeAccounts) SignIn(_ context.Context, in service.SignInInput, _ service.ClientMeta) (*service.IssuedSession, error) {
	f.signedIn = &in
	if f.err != nil {
		return nil, f.err
	}
	return &service.IssuedSession{Token: "tok", ExpiresAt: time.Unix(2000000000, 0).UTC(), User: model.User{ID: 1, Email: in.Email}}, nil
}

func (f *fakeAccounts) SignOut(_ context.Context, token string) error { f.signedOut = token; return nil }

func (f *fakeAccounts) User(_ context.Context, id uint64) (model.User, error) {
	return model.User{ID: id}, nil
}

func TestSignIn(t *testing.T) {
	f := &fakeAccounts{}
	h := NewAuthHandler(f, "session_token", true)
	e := echo.New()
	e.POST("/api/auth/sign-in/email", h.SignIn)
	e.POST("/api/auth/sign-up/email", h.SignUp)

	rec := do(e, http.MethodPost, "/api/auth/sign-in/email", `{"email":"a@b.co","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["token"]; got != "tok" {
		t.Fatalf("token = %v", got)
	}
	ck := rec.Result().Cookies()
	if len(ck) != 1 || ck[0].Name != "session_token" || ck[0].Value != "tok" || !ck[0].HttpOnly || !ck[0].Secure {
		t.Fatalf("cookies = %+v", ck)
	}

	f.err = service.ErrInvalidCredentials
	wantError(t, do(e, http.MethodPost, "/api/auth/sign-in/email", `{"email":"a@b.co","password":"x"}`), http.StatusUnauthorized, "INVALID_CREDENTIALS")
	wantError(t, do(e, http.MethodPost, "/api/auth/sign-up/email", `{"name":"a","email":"a@b.co","password":"x"}`), http.StatusForbidden, "SIGNUP_DISABLED")
}

type fakeDishes struct {
	dishes  map[uint64]model.Dish
	created *model.Dish
	patch   *repository.DishPatch
	query   repository.DishQuery
}

func (f *fakeDishes) Get(_ context.Context, id uint64) (*model.Dish, error) {
	d, ok := f.dishes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (f *fakeDishes) List(_ context.Context, q repository.DishQuery) ([]model.Dish, error) {
	f.query = q
	return nil, nil
}

func (f *fakeDishes) Create(_ context.Context, d model.Dish) (*model.Dish, error) {
	d.ID = 10
	f.created = &d
	return &d, nil
}

func (f *fakeDishes) Update(_ context.Context, id uint64, p repository.DishPatch) (*model.Dish, error) {
	f.patch = &p
	d := f.dishes[id]
	return &d, nil
}

func (f *fakeDishes) Delete(ctx context.Context, id uint64) (*model.Dish, error) { return f.Get(ctx, id) }

type fakeContents struct{ ContentStore }

type fakePages struct {
	created *model.PageContent
	patch   *repository.PageContentPatch
}

func (f *fakePages) Get(_ context.Context, id uint64) (*model.PageContent, error) {
	if id != 1 {
		return nil, sql.ErrNoRows
	}
	return &model.PageContent{ID: 1}, nil
}

func (f *fakePages) List(context.Context, repository.PageContentQuery) ([]model.PageContent, error) {
	return nil, nil
}

func (f *fakePages) Create(_ context.Context, pc model.PageContent) (*model.PageContent, error) {
	f.created = &pc
	return &pc, nil
}

func (f *fakePages) Update(_ context.Context, id uint64, p repository.PageContentPatch) (*model.PageContent, error) {
	f.patch = &p
	return &model.PageContent{ID: id}, nil
}

func (f *fakePages) Delete(ctx context.Context, id uint64) (*model.PageContent, error) {
	return f.Get(ctx, id)
}

func cmsEcho(d *fakeDishes, p *fakePages, invalidations *int) *echo.Echo {
	h := NewCMSHandler(d, fakeContents{}, p)
	h.Invalidate = func(context.Context) error { *invalidations++; return nil }
	e := echo.New()
	e.GET("/api/dishes", h.ListDishes)
	e.POST("/api/dishes", h.CreateDish)
	e.PUT("/api/dishes", h.UpdateDish)
	e.DELETE("/api/dishes", h.DeleteDish)
	e.POST("/api/page-contents", h.CreatePageContent)
	e.PUT("/api/page-contents", h.UpdatePageContent)
	return e
}

func TestCreateDish(t *testing.T) {
	var n int
	d := &fakeDishes{}
	e := cmsEcho(d, &fakePages{}, &n)

	cases := []struct {
		body string
		code string
	}{
		{`{"description":"d","category":"c","price":"1"}`, "MISSING_NAME"},
		{`{"name":"  ","description":"d","category":"c","price":"1"}`, "MISSING_NAME"},
		{`{"name":"n","category":"c","price":"1"}`, "MISSING_DESCRIPTION"},
		{`{"name":"n","description":"d","price":"1"}`, "MISSING_CATEGORY"},
		{`{"name":"n","description":"d","category":"c"}`, "MISSING_PRICE"},
		{`{"name":"n","description":"d","category":"c","price":"1","style":"Fusion"}`, "INVALID_STYLE"},
	}
	for _, tc := range cases {
		wantError(t, do(e, http.MethodPost, "/api/dishes", tc.body), http.StatusBadRequest, tc.code)
	}
	if d.created != nil || n != 0 {
		t.Fatal("invalid input must not be stored")
	}

	rec := do(e, http.MethodPost, "/api/dishes", `{"name":" Dosa ","description":"crisp","category":"Mains","price":"$12","style":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if d.created.Name != "Dosa" || !d.created.IsAvailable || d.created.Style != nil || d.created.ImageURL != nil {
		t.Fatalf("created = %+v", d.created)
	}
	if n != 1 {
		t.Fatalf("invalidations = %d", n)
	}
}

func TestUpdateDish(t *testing.T) {
	var n int
	d := &fakeDishes{dishes: map[uint64]model.Dish{3: {ID: 3, Name: "Idli"}}}
	e := cmsEcho(d, &fakePages{}, &n)

	rec := do(e, http.MethodPut, "/api/dishes?id=4", `{"name":"x"}`)
	wantError(t, rec, http.StatusNotFound, codeNotFound)
	if decodeBody(t, rec)["error"] != "Dish not found" {
		t.Fatalf("body = %s", rec.Body)
	}
	wantError(t, do(e, http.MethodPut, "/api/dishes?id=3", `{"name":" "}`), http.StatusBadRequest, "INVALID_NAME")
	wantError(t, do(e, http.MethodPut, "/api/dishes?id=3", `{"description":""}`), http.StatusBadRequest, "INVALID_DESCRIPTION")

	rec = do(e, http.MethodPut, "/api/dishes?id=3", `{"price":" $9 ","style":null,"isAvailable":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	p := d.patch
	if p.Name != nil || p.ImageURL != nil {
		t.Fatalf("absent fields must stay nil: %+v", p)
	}
	if p.Price == nil || *p.Price != "$9" || p.Style == nil || *p.Style != "" || p.IsAvailable == nil || *p.IsAvailable {
		t.Fatalf("patch = %+v", p)
	}
}

func TestListDishesQuery(t *testing.T) {
	var n int
	d := &fakeDishes{dishes: map[uint64]model.Dish{}}
	e := cmsEcho(d, &fakePages{}, &n)

	rec := do(e, http.MethodGet, "/api/dishes?category=Mains&available=true&limit=5&offset=10&style=South+Indian", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("list = %d %s", rec.Code, rec.Body)
	}
	q := d.query
	if q.Category != "Mains" || q.Available == nil || !*q.Available || q.Limit != 5 || q.Offset != 10 || q.Style != "South Indian" {
		t.Fatalf("query = %+v", q)
	}
	wantError(t, do(e, http.MethodGet, "/api/dishes?limit=-1", ""), http.StatusBadRequest, "INVALID_LIMIT")
	wantError(t, do(e, http.MethodGet, "/api/dishes?id=x", ""), http.StatusBadRequest, codeInvalidID)
	wantError(t, do(e, http.MethodGet, "/api/dishes?id=8", ""), http.StatusNotFound, codeNotFound)
}

func TestDeleteDish(t *testing.T) {
	var n int
	d := &fakeDishes{dishes: map[uint64]model.Dish{3: {ID: 3, Name: "Idli"}}}
	rec := do(cmsEcho(d, &fakePages{}, &n), http.MethodDelete, "/api/dishes?id=3", "")
	if rec.Code != http.StatusOK || decodeBody(t, rec)["message"] != "Dish deleted successfully" {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body)
	}
}

func TestPageContentCreate(t *testing.T) {
	var n int
	p := &fakePages{}
	e := cmsEcho(&fakeDishes{}, p, &n)

	cases := []struct {
		body string
		code string
	}{
		{`{"page":"home","section":"hero","contentType":"text"}`, service.CodeMissingRequiredFields},
		{`{"page":"blog","section":"hero","contentType":"text","fieldName":"title"}`, "INVALID_PAGE"},
		{`{"page":"home","section":"hero","contentType":"video","fieldName":"title"}`, "INVALID_CONTENT_TYPE"},
		{`{"page":"home","section":"hero","contentType":"text","fieldName":"title","displayOrder":"abc"}`, "INVALID_DISPLAY_ORDER"},
	}
	for _, tc := range cases {
		wantError(t, do(e, http.MethodPost, "/api/page-contents", tc.body), http.StatusBadRequest, tc.code)
	}

	rec := do(e, http.MethodPost, "/api/page-contents",
		`{"page":"home","section":"hero","contentType":"text","fieldName":"title","fieldValue":" Welcome ","displayOrder":"3"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if p.created.DisplayOrder != 3 || p.created.FieldValue == nil || *p.created.FieldValue != "Welcome" {
		t.Fatalf("created = %+v", p.created)
	}
}

func TestPageContentUpdate(t *testing.T) {
	var n int
	p := &fakePages{}
	e := cmsEcho(&fakeDishes{}, p, &n)

	wantError(t, do(e, http.MethodPut, "/api/page-contents?id=2", `{}`), http.StatusNotFound, codeNotFound)
	wantError(t, do(e, http.MethodPut, "/api/page-contents?id=1", `{"page":"blog"}`), http.StatusBadRequest, "INVALID_PAGE")
	wantError(t, do(e, http.MethodPut, "/api/page-contents?id=1", `{"section":" "}`), http.StatusBadRequest, service.CodeMissingRequiredFields)

	rec := do(e, http.MethodPut, "/api/page-contents?id=1", `{"displayOrder":7,"fieldValue":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if p.patch.DisplayOrder == nil || *p.patch.DisplayOrder != 7 || p.patch.FieldValue == nil || *p.patch.FieldValue != "" || p.patch.Page != nil {
		t.Fatalf("patch = %+v", p.patch)
	}
	if n != 1 {
		t.Fatalf("invalidations = %d", n)
	}
}
