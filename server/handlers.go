package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"trusttracker/auth"
	"trusttracker/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) healthHandler(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.log.Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// indexHandler lists every trust.
func (s *Server) indexHandler(c *gin.Context) {
	ctx := c.Request.Context()
	trusts, err := s.store.ListTrusts(ctx)
	if err != nil {
		s.fail(c, "list trusts", err)
		return
	}
	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.fail(c, "count records", err)
		return
	}
	s.render(c, http.StatusOK, "index.html", gin.H{"Trusts": trusts, "Counts": counts})
}

func (s *Server) trustDetailHandler(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.flash(c, auth.FlashError, "Trust not found")
		s.redirect(c, "/")
		return
	}
	d, err := s.store.TrustDetail(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.flash(c, auth.FlashError, "Trust not found")
		s.redirect(c, "/")
		return
	}
	if err != nil {
		s.fail(c, "load trust", err)
		return
	}
	s.render(c, http.StatusOK, "trust_detail.html", gin.H{
		"Trust":        d.Trust,
		"Transactions": d.Transactions,
		"Meetings":     d.Meetings,
		"Balance":      d.Balance,
	})
}

func (s *Server) addTrustPageHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "add_trust.html", gin.H{"Form": trustForm{}})
}

func (s *Server) addTrustHandler(c *gin.Context) {
	var f trustForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		p := f.problem(err)
		if p.Rerender {
			s.render(c, http.StatusUnprocessableEntity, "add_trust.html", gin.H{"Form": f, "Error": p.Message})
			return
		}
		s.flash(c, auth.FlashError, p.Message)
		s.redirect(c, c.Request.URL.Path)
		return
	}
	t := f.model()
	if err := s.store.CreateTrust(c.Request.Context(), &t); err != nil {
		s.fail(c, "create trust", err)
		return
	}
	s.log.Info("trust created", "trust_id", t.ID, "user", currentUser(c).Username)
	s.flash(c, auth.FlashSuccess, "Trust added successfully!")
	s.redirect(c, "/")
}

func (s *Server) listTransactionsHandler(c *gin.Context) {
	txs, err := s.store.ListTransactions(c.Request.Context())
	if err != nil {
		s.fail(c, "list transactions", err)
		return
	}
	s.render(c, http.StatusOK, "transactions.html", gin.H{"Transactions": txs})
}

// renderTransactionForm shows the form with the trust list and any submitted values.
func (s *Server) renderTransactionForm(c *gin.Context, status int, f transactionForm, problem string) {
	trusts, err := s.store.ListTrusts(c.Request.Context())
	if err != nil {
		s.fail(c, "list trusts", err)
		return
	}
	s.render(c, status, "add_transaction.html", gin.H{"Trusts": trusts, "Form": f, "Error": problem})
}

func (s *Server) addTransactionPageHandler(c *gin.Context) {
	f := transactionForm{TrustID: c.Query("trust_id")}
	s.renderTransactionForm(c, http.StatusOK, f, "")
}

func (s *Server) addTransactionHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var f transactionForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		p := f.problem(err)
		if p.Rerender {
			s.renderTransactionForm(c, http.StatusUnprocessableEntity, f, p.Message)
			return
		}
		s.flash(c, auth.FlashError, p.Message)
		s.redirect(c, "/transaction/add")
		return
	}
	amount, err := parseAmount(f.Amount)
	if err != nil {
		s.flash(c, auth.FlashError, err.Error())
		s.redirect(c, "/transaction/add")
		return
	}
	trustID, ok := s.trustExists(c, f.TrustID, "/transaction/add")
	if !ok {
		return
	}

	user := currentUser(c)
	tx := f.model(trustID, amount, user.ID)
	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		s.fail(c, "create transaction", err)
		return
	}
	s.log.Info("transaction created", "transaction_id", tx.ID, "trust_id", tx.TrustID, "user", user.Username)
	s.flash(c, auth.FlashSuccess, "Transaction added successfully!")
	s.redirect(c, "/transactions")
}

// trustExists resolves the submitted trust id. It redirects back to formPath
// with a flash when the id is malformed or unknown.
func (s *Server) trustExists(c *gin.Context, raw, formPath string) (uint, bool) {
	id, ok := parseID(strings.TrimSpace(raw))
	if ok {
		found, err := s.store.TrustExists(c.Request.Context(), id)
		if err != nil {
			s.fail(c, "check trust", err)
			return 0, false
		}
		ok = found
	}
	if !ok {
		s.flash(c, auth.FlashError, "Selected trust does not exist.")
		s.redirect(c, formPath)
		return 0, false
	}
	return id, true
}

func (s *Server) listMeetingsHandler(c *gin.Context) {
	ms, err := s.store.ListMeetings(c.Request.Context())
	if err != nil {
		s.fail(c, "list meetings", err)
		return
	}
	s.render(c, http.StatusOK, "meetings.html", gin.H{"Meetings": ms})
}

func (s *Server) renderMeetingForm(c *gin.Context, status int, f meetingForm, problem string) {
	trusts, err := s.store.ListTrusts(c.Request.Context())
	if err != nil {
		s.fail(c, "list trusts", err)
		return
	}
	s.render(c, status, "add_meeting.html", gin.H{"Trusts": trusts, "Form": f, "Error": problem})
}

func (s *Server) addMeetingPageHandler(c *gin.Context) {
	f := meetingForm{TrustID: c.Query("trust_id")}
	s.renderMeetingForm(c, http.StatusOK, f, "")
}

func (s *Server) addMeetingHandler(c *gin.Context) {
	var f meetingForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		p := f.problem(err)
		if p.Rerender {
			s.renderMeetingForm(c, http.StatusUnprocessableEntity, f, p.Message)
			return
		}
		s.flash(c, auth.FlashError, p.Message)
		s.redirect(c, "/meeting/add")
		return
	}
	trustID, ok := s.trustExists(c, f.TrustID, "/meeting/add")
	if !ok {
		return
	}

	user := currentUser(c)
	m := f.model(trustID, user.ID)
	if err := s.store.CreateMeeting(c.Request.Context(), &m); err != nil {
		s.fail(c, "create meeting", err)
		return
	}
	s.log.Info("meeting created", "meeting_id", m.ID, "trust_id", m.TrustID, "user", user.Username)
	s.flash(c, auth.FlashSuccess, "Meeting added successfully!")
	s.redirect(c, "/meetings")
}
