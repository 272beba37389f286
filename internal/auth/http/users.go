package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

type UserHandler struct {
	UserService *service.UserService
	AuthService *service.AuthService
}

func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	info, ok := httpx.PrincipalFromContext[domain.UserAuthInfo](r.Context())
	if !ok {
		authsdk.ErrAccessUnauthorized.WriteError(w)
		return
	}

	me, err := h.UserService.Me(r.Context(), info)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteOK(w, authsdk.CurrentUser{
		UserID:   me.UserID,
		Username: me.Username,
		Nickname: me.Nickname,
		DeptID:   me.DeptID,
		DeptName: me.DeptName,
		Roles:    me.Roles,
	})
}

// HandleChangePassword changes the caller's password. Every token the caller
// holds, including the one on this request, stops working.
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrAccessUnauthorized.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidUserInput.WithMsg("malformed request body").WriteError(w)
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, nil)
}

// HandlePage lists the users the caller's data scopes allow.
func (h *UserHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	u, ok := datascope.FromContext(r.Context())
	if !ok {
		authsdk.ErrAccessUnauthorized.WriteError(w)
		return
	}

	q, err := parseUserQuery(r)
	if err != nil {
		authsdk.ErrInvalidUserInput.WithMsg(err.Error()).WriteError(w)
		return
	}

	page, err := h.UserService.ListUsers(r.Context(), u, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.UserPage{Total: page.Total, List: make([]authsdk.UserView, 0, len(page.List))}
	for _, v := range page.List {
		resp.List = append(resp.List, authsdk.UserView(v))
	}
	httpx.WriteOK(w, resp)
}

func parseUserQuery(r *http.Request) (domain.UserQuery, error) {
	v := r.URL.Query()
	q := domain.UserQuery{Keywords: v.Get("keywords")}

	var err error
	if q.PageNum, err = optionalInt(v.Get("pageNum"), "pageNum"); err != nil {
		return q, err
	}
	if q.PageSize, err = optionalInt(v.Get("pageSize"), "pageSize"); err != nil {
		return q, err
	}
	if s := v.Get("status"); s != "" {
		status, err := optionalInt(s, "status")
		if err != nil {
			return q, err
		}
		q.Status = &status
	}
	if s := v.Get("deptId"); s != "" {
		dept, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, errInvalidParam("deptId")
		}
		q.DeptID = &dept
	}
	return q, nil
}

func optionalInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errInvalidParam(name)
	}
	return n, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid query parameter " + string(e) }
