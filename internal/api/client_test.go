package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/mybudget/internal/api"
)

func newRawServer(t *testing.T, status int, body string, inspect func(r *http.Request)) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return api.New(api.Options{Endpoint: srv.URL + "/api/v1", Token: "tok"})
}

func TestListAccountsCheckingExample(t *testing.T) {
	var gotPath string
	c := newRawServer(t, http.StatusOK, `{"success":true,"data":[{"id":1,"nome":"Checking","saldo_totale":500}],"pagination":{"current_page":1,"last_page":1,"total":1,"per_page":50}}`,
		func(r *http.Request) { gotPath = r.URL.Path })

	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "/api/v1/accounts", gotPath)
	assert.Equal(t, "Checking", accounts[0].Nome)
	require.NotNil(t, accounts[0].SaldoTotale)
	assert.True(t, accounts[0].SaldoTotale.Equal(decimal.NewFromInt(500)))
}

func TestBalanceAcceptsNumericString(t *testing.T) {
	c := newRawServer(t, http.StatusOK, `{"success":true,"data":[{"id":2,"nome":"Risparmi","saldo_totale":"1234.56"}]}`, nil)
	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234.56", accounts[0].SaldoTotale.StringFixed(2))
}

func TestRequestAugmentation(t *testing.T) {
	var auth, accept, rid string
	c := newRawServer(t, http.StatusOK, `{"success":true,"data":[]}`, func(r *http.Request) {
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		rid = r.Header.Get(api.RequestIDHeader)
	})
	_, err := c.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "application/json", accept)
	assert.Len(t, rid, 36)

	c.SetToken("")
	_, err = c.ListTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.False(t, c.HasToken())
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	c := newRawServer(t, http.StatusUnauthorized, `{"message":"Unauthenticated."}`, nil)
	_, err := c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Unauthenticated.", apiErr.Error())
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c := newRawServer(t, http.StatusUnprocessableEntity,
		`{"success":false,"message":"I dati forniti non sono validi.","errors":{"nome":["Il campo nome è obbligatorio."]}}`, nil)
	_, err := c.CreateTag(context.Background(), api.TagInput{})
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsValidation())
	assert.False(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "Il campo nome è obbligatorio.", apiErr.FirstFieldMessage())
	assert.Equal(t, "Il campo nome è obbligatorio.", apiErr.FieldMessage("nome"))
}

func TestSuccessFalseWith2xxIsError(t *testing.T) {
	c := newRawServer(t, http.StatusOK, `{"success":false,"message":"Operazione non consentita"}`, nil)
	err := c.DeleteTag(context.Background(), 3)
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Operazione non consentita", apiErr.Error())
}

func TestServerErrorWithoutBody(t *testing.T) {
	c := newRawServer(t, http.StatusInternalServerError, `<html>oops</html>`, nil)
	_, err := c.ListTags(context.Background())
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Internal Server Error", apiErr.Error())
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	c := newRawServer(t, http.StatusOK, `not json`, nil)
	_, err := c.ListTags(context.Background())
	require.Error(t, err)
	_, isAPI := api.AsError(err)
	assert.False(t, isAPI)
}

func TestTransactionQueryEncoding(t *testing.T) {
	q := api.TransactionQuery{Anno: 2025, Mese: 3, ContoID: 4, Tag: 9, Page: 2, PerPage: 50}
	v := q.Values()
	assert.Equal(t, "2025", v.Get("anno"))
	assert.Equal(t, "3", v.Get("mese"))
	assert.Equal(t, "4", v.Get("conto_id"))
	assert.Equal(t, "9", v.Get("tag"))
	assert.Equal(t, "2", v.Get("page"))

	f := q.FilterValues()
	assert.Empty(t, f.Get("page"))
	assert.Empty(t, f.Get("per_page"))
	assert.Equal(t, "9", f.Get("tag"))
	assert.Empty(t, api.TransactionQuery{}.Values())
}

func TestLoginReadsTopLevelToken(t *testing.T) {
	c := newRawServer(t, http.StatusOK, `{"success":true,"token":"abc","user":{"id":1,"name":"Demo","email":"demo@x.it"}}`, nil)
	sess, err := c.Login(context.Background(), api.Credentials{Email: "demo@x.it", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, "Demo", sess.User.Name)
}

func TestLoginReadsNestedToken(t *testing.T) {
	c := newRawServer(t, http.StatusOK, `{"success":true,"data":{"token":"xyz","user":{"id":1,"name":"Demo","email":"d@x.it"}}}`, nil)
	sess, err := c.Login(context.Background(), api.Credentials{Email: "d@x.it", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "xyz", sess.Token)
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":5}}`))
	}))
	defer srv.Close()
	c := api.New(api.Options{Endpoint: srv.URL})
	_, err := c.CreateTransaction(context.Background(), api.TransactionInput{
		DataOperazione: "2025-01-02",
		Importo:        decimal.RequireFromString("-12.50"),
		ContoID:        1,
		Tags:           []int64{3},
	})
	require.NoError(t, err)
	assert.Contains(t, body, `"importo":-12.5`)
	assert.Contains(t, body, `"tags":[3]`)
}
