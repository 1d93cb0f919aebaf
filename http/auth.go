package http

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pilot"
	"github.com/gofiber/fiber/v2"
)

// userKey is the Fiber locals key holding the authenticated user.
const userKey = "user"

// session is a remembered authentication. The header is kept to rule out
// hash collisions.
type session struct {
	header string
	user   *pilot.User
}

// authenticate checks HTTP Basic credentials against the user service and
// stores the user for the handlers. A successful check is remembered for the
// session TTL, so only the first request of a session pays for the password
// hash and records a login. Clients with too many failed attempts are
// refused without checking.
func (s *Server) authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	key := strconv.FormatUint(xxhash.Sum64String(header), 16)
	if v, ok := s.sessions.Get(key); ok && header != "" {
		if sess := v.(*session); sess.header == header {
			c.Locals(userKey, sess.user)
			return c.Next()
		}
	}

	ip := c.IP()
	if s.AuthLimiter != nil && s.AuthLimiter.Exhausted(ip) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error: "Trop de tentatives de connexion. Réessayez dans 15 minutes.",
		})
	}

	email, password, ok := parseBasicAuth(header)
	if !ok {
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="pilot"`)
		return s.Error(c, pilot.Errorf(pilot.EUNAUTHORIZED, "Non authentifié"))
	}

	user, err := s.Users.Authenticate(c.UserContext(), email, password)
	if err != nil {
		if pilot.ErrorCode(err) == pilot.EUNAUTHORIZED && s.AuthLimiter != nil {
			s.AuthLimiter.Allow(ip)
		}
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="pilot"`)
		return s.Error(c, err)
	}

	s.sessions.SetDefault(key, &session{header: strings.Clone(header), user: user})
	c.Locals(userKey, user)
	return c.Next()
}

// currentUser returns the user stored by authenticate.
func currentUser(c *fiber.Ctx) *pilot.User {
	user, _ := c.Locals(userKey).(*pilot.User)
	return user
}

// parseBasicAuth parses an HTTP Basic Authorization header.
func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

// limitChat refuses chat turns beyond the per-user rate.
func (s *Server) limitChat(c *fiber.Ctx) error {
	user := currentUser(c)
	if s.ChatLimiter != nil && user != nil && !s.ChatLimiter.Allow(user.ID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error: "Trop de messages. Patientez quelques secondes.",
		})
	}
	return c.Next()
}
