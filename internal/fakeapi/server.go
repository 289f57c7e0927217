// Package fakeapi is an in-memory implementation of the budget REST
// backend, for local runs and tests.
package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/logging"
)

// BasePath is where the versioned API is mounted.
const BasePath = "/api/v1"

type fault struct {
	status int
	times  int
}

// Server serves the REST contract from memory.
type Server struct {
	store  *store
	log    *logging.Logger
	now    func() time.Time
	engine *gin.Engine

	mu       sync.Mutex
	faults   map[string]*fault
	requests map[string]int
}

// Option customizes a Server.
type Option func(*Server)

// WithClock fixes the server's notion of today.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a server loaded with seed.
func New(seed Seed, opts ...Option) (*Server, error) {
	s := &Server{
		store:    newStore(),
		log:      logging.Discard(),
		now:      time.Now,
		faults:   map[string]*fault{},
		requests: map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("fakeapi")
	if err := s.store.apply(seed, s.now()); err != nil {
		return nil, err
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Fail makes the next times requests matching method and path answer status.
func (s *Server) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = &fault{status: status, times: times}
}

// Requests counts the requests served for method and path.
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// Login issues a token directly, bypassing HTTP.
func (s *Server) Login(email, password string) (string, bool) {
	sess, ok := s.store.login(api.Credentials{Email: email, Password: password})
	return sess.Token, ok
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", api.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", api.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group(BasePath)
	v1.Use(s.faultInjector())
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
		v1.POST("/auth/login", s.login)
		v1.POST("/auth/register", s.register)
	}

	authed := v1.Group("")
	authed.Use(s.requireToken())
	{
		authed.POST("/auth/logout", s.logout)
		authed.GET("/auth/me", s.me)

		authed.GET("/accounts", s.listAccounts)
		authed.POST("/accounts", s.createAccount)
		authed.GET("/accounts/:id", s.getAccount)
		authed.PUT("/accounts/:id", s.updateAccount)
		authed.DELETE("/accounts/:id", s.deleteAccount)

		authed.GET("/transactions", s.listTransactions)
		authed.POST("/transactions", s.createTransaction)
		authed.GET("/transactions/statistics", s.statistics)
		authed.GET("/transactions/:id", s.getTransaction)
		authed.PUT("/transactions/:id", s.updateTransaction)
		authed.DELETE("/transactions/:id", s.deleteTransaction)

		authed.GET("/tags", s.listTags)
		authed.POST("/tags", s.createTag)
		authed.GET("/tags/:id", s.getTag)
		authed.PUT("/tags/:id", s.updateTag)
		authed.DELETE("/tags/:id", s.deleteTag)

		authed.GET("/charts/expense-by-tag", s.expenseByTag)
		authed.GET("/charts/income-vs-expense", s.incomeVsExpense)
		authed.GET("/charts/balance-over-time", s.balanceOverTime)
	}
	return router
}

// middleware

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(api.RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(api.RequestIDHeader, rid)
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", rid)
	}
}

func (s *Server) faultInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, BasePath)
		s.mu.Lock()
		s.requests[key]++
		f, ok := s.faults[key]
		if ok {
			f.times--
			if f.times <= 0 {
				delete(s.faults, key)
			}
		}
		s.mu.Unlock()
		if ok {
			c.AbortWithStatusJSON(f.status, gin.H{"success": false, "message": "Errore simulato"})
			return
		}
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		u, ok := s.store.userForToken(tok)
		if tok == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthenticated."})
			return
		}
		c.Set("user", u)
		c.Set("token", tok)
		c.Next()
	}
}

// responses

func respond(c *gin.Context, status int, data any, extra gin.H) {
	body := gin.H{"success": true, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, err error) {
	var fe fieldErrors
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": fe.Error(), "errors": fe})
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Risorsa non trovata"})
	case errors.Is(err, errAccountInUse):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Impossibile eliminare un conto con operazioni associate"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, errNotFound)
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, v any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "JSON non valido"})
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

func queryInt64(c *gin.Context, name string) int64 {
	n, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return n
}

func transactionQuery(c *gin.Context) api.TransactionQuery {
	return api.TransactionQuery{
		Anno:    queryInt(c, "anno"),
		Mese:    queryInt(c, "mese"),
		Data:    c.Query("data"),
		ContoID: queryInt64(c, "conto_id"),
		Tag:     queryInt64(c, "tag"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}
}

func chartQuery(c *gin.Context) api.ChartQuery {
	return api.ChartQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		AccountID: queryInt64(c, "account_id"),
		TagID:     queryInt64(c, "tag_id"),
	}
}

// auth handlers

func (s *Server) login(c *gin.Context) {
	var creds api.Credentials
	if !bind(c, &creds) {
		return
	}
	fe := fieldErrors{}
	if strings.TrimSpace(creds.Email) == "" {
		fe.add("email", "Il campo email è obbligatorio.")
	}
	if creds.Password == "" {
		fe.add("password", "Il campo password è obbligatorio.")
	}
	if len(fe) > 0 {
		fail(c, fe)
		return
	}
	sess, found := s.store.login(creds)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Credenziali non valide"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": sess.Token, "user": sess.User, "message": "Login effettuato"})
}

func (s *Server) register(c *gin.Context) {
	var reg api.Registration
	if !bind(c, &reg) {
		return
	}
	sess, err := s.store.register(reg)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": sess.Token, "user": sess.User, "message": "Registrazione completata"})
}

func (s *Server) logout(c *gin.Context) {
	s.store.revoke(c.GetString("token"))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout effettuato"})
}

func (s *Server) me(c *gin.Context) {
	u, _ := c.Get("user")
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// account handlers

func (s *Server) listAccounts(c *gin.Context) {
	accounts := s.store.listAccounts()
	respond(c, http.StatusOK, accounts, gin.H{"count": len(accounts)})
}

func (s *Server) getAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	a, err := s.store.getAccount(id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, a, nil)
}

func (s *Server) createAccount(c *gin.Context) {
	var in api.AccountInput
	if !bind(c, &in) {
		return
	}
	a, err := s.store.saveAccount(0, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, a, gin.H{"message": "Conto creato"})
}

func (s *Server) updateAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var in api.AccountInput
	if !bind(c, &in) {
		return
	}
	a, err := s.store.saveAccount(id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, a, gin.H{"message": "Conto aggiornato"})
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := s.store.deleteAccount(id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, gin.H{"message": "Conto eliminato"})
}

// tag handlers

func (s *Server) listTags(c *gin.Context) {
	tags := s.store.listTags()
	respond(c, http.StatusOK, tags, gin.H{"count": len(tags)})
}

func (s *Server) getTag(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	t, err := s.store.getTag(id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, nil)
}

func (s *Server) createTag(c *gin.Context) {
	var in api.TagInput
	if !bind(c, &in) {
		return
	}
	t, err := s.store.saveTag(0, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, t, gin.H{"message": "Tag creato"})
}

func (s *Server) updateTag(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var in api.TagInput
	if !bind(c, &in) {
		return
	}
	t, err := s.store.saveTag(id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, gin.H{"message": "Tag aggiornato"})
}

func (s *Server) deleteTag(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := s.store.deleteTag(id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, gin.H{"message": "Tag eliminato"})
}

// transaction handlers

func (s *Server) listTransactions(c *gin.Context) {
	page := s.store.listTransactions(transactionQuery(c))
	respond(c, http.StatusOK, page.Items, gin.H{"pagination": page.Pagination})
}

func (s *Server) statistics(c *gin.Context) {
	q := transactionQuery(c)
	q.Page, q.PerPage = 0, 0
	respond(c, http.StatusOK, s.store.statistics(q), nil)
}

func (s *Server) getTransaction(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	t, err := s.store.getTransaction(id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, nil)
}

func (s *Server) createTransaction(c *gin.Context) {
	var in api.TransactionInput
	if !bind(c, &in) {
		return
	}
	t, err := s.store.createTransaction(in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, t, gin.H{"message": "Operazione creata"})
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var in api.TransactionInput
	if !bind(c, &in) {
		return
	}
	t, err := s.store.updateTransaction(id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, gin.H{"message": "Operazione aggiornata"})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := s.store.deleteTransaction(id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, gin.H{"message": "Operazione eliminata"})
}

// chart handlers

func (s *Server) expenseByTag(c *gin.Context) {
	r := s.store.expenseByTag(chartQuery(c), s.now())
	respond(c, http.StatusOK, r.Rows, gin.H{"totale_generale": r.TotaleGenerale})
}

func (s *Server) incomeVsExpense(c *gin.Context) {
	r := s.store.incomeVsExpense(chartQuery(c), s.now())
	respond(c, http.StatusOK, r.Rows, gin.H{"statistiche": r.Totals})
}

func (s *Server) balanceOverTime(c *gin.Context) {
	r, err := s.store.balanceOverTime(chartQuery(c), s.now())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, r.Rows, gin.H{"conto": r.Account, "statistiche": r.Stats})
}
