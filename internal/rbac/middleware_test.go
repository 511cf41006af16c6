package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/auth"
)

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), auth.User{ID: "u", Email: "u@x.io", Role: role}))
		c.Next()
	}
}

func serve(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestRequireAnyRole_AdminBypasses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", withRole(RoleAdmin), RequireAnyRole(RoleMember), func(c *gin.Context) {
		c.Status(200)
	})
	if code := serve(r, http.MethodGet, "/x"); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_UnknownRoleDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", withRole("owner"), RequireAnyRole("owner"), func(c *gin.Context) {
		c.Status(200)
	})
	if code := serve(r, http.MethodGet, "/x"); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_RoleRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", RequireAnyRole(RoleMember), func(c *gin.Context) {
		c.Status(200)
	})
	if code := serve(r, http.MethodGet, "/x"); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireWriter_ViewerCanOnlyRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	g := r.Group("/", withRole(RoleViewer), RequireWriter())
	g.GET("/leads", func(c *gin.Context) { c.Status(200) })
	g.POST("/leads", func(c *gin.Context) { c.Status(201) })

	if code := serve(r, http.MethodGet, "/leads"); code != 200 {
		t.Fatalf("expected viewer read 200, got %d", code)
	}
	if code := serve(r, http.MethodPost, "/leads"); code != 403 {
		t.Fatalf("expected viewer write 403, got %d", code)
	}
}

func TestRequireWriter_MemberCanWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/leads", withRole(RoleMember), RequireWriter(), func(c *gin.Context) { c.Status(201) })
	if code := serve(r, http.MethodPost, "/leads"); code != 201 {
		t.Fatalf("expected 201, got %d", code)
	}
}
