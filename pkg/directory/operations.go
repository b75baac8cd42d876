package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/permflow/engine/pkg/xerrors"
)

// UserRecord is the subset of a directory user entry the engine cares
// about.
type UserRecord struct {
	Username    string
	DN          string
	Mail        string
	DisplayName string
	Disabled    bool
}

// filterFmt builds a filter template by substituting %s with the escaped
// value, defending against LDAP filter injection (§4.3).
func filterFmt(template, value string) string {
	return fmt.Sprintf(template, ldap.EscapeFilter(value))
}

// GroupExists reports whether a group with the given name exists in any
// configured search scope (§4.3).
func (a *Adapter) GroupExists(ctx context.Context, name string) (bool, error) {
	conn, err := a.dial()
	if err != nil {
		return false, err
	}
	defer conn.Close()

	entries, err := a.pagedSearch(conn, filterFmt(a.cfg.GroupFilter, name), []string{"dn"})
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// GroupMembers returns the distinguished names of every member of the
// named group, resolved via MemberFilter against the group's own DN
// (§4.3).
func (a *Adapter) GroupMembers(ctx context.Context, groupDN string) ([]string, error) {
	conn, err := a.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entries, err := a.pagedSearch(conn, filterFmt(a.cfg.MemberFilter, groupDN), []string{a.cfg.AttrDN})
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(entries))
	for _, e := range entries {
		dn := e.GetAttributeValue(a.cfg.AttrDN)
		if dn == "" {
			dn = e.DN
		}
		members = append(members, dn)
	}
	return members, nil
}

// UserDetails looks up a user by username, returning xerrors.KindNotFound
// if no entry matches (§4.3).
func (a *Adapter) UserDetails(ctx context.Context, username string) (*UserRecord, error) {
	conn, err := a.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	attrs := []string{a.cfg.AttrUsername, a.cfg.AttrMail, a.cfg.AttrDN, "displayName", "userAccountControl"}
	entries, err := a.pagedSearch(conn, filterFmt(a.cfg.UserFilter, username), attrs)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, xerrors.New(xerrors.KindNotFound, "directory.UserDetails",
			fmt.Errorf("no entry for username %q", username))
	}

	e := entries[0]
	return &UserRecord{
		Username:    e.GetAttributeValue(a.cfg.AttrUsername),
		DN:          dnOrEntry(e, a.cfg.AttrDN),
		Mail:        e.GetAttributeValue(a.cfg.AttrMail),
		DisplayName: e.GetAttributeValue("displayName"),
		Disabled:    isAccountDisabled(e),
	}, nil
}

// UserGroups returns the names of every group the user belongs to, used
// both for catalogue sync and as the decision-authoritative source for
// verification (§4.3, §4.6 scenario 4): verification never substitutes a
// local catalogue read for this call.
func (a *Adapter) UserGroups(ctx context.Context, username string) ([]string, error) {
	user, err := a.UserDetails(ctx, username)
	if err != nil {
		return nil, err
	}

	conn, err := a.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entries, err := a.pagedSearch(conn, filterFmt(a.cfg.MemberFilter, user.DN), []string{"cn"})
	if err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(entries))
	for _, e := range entries {
		cn := e.GetAttributeValue("cn")
		if cn != "" {
			groups = append(groups, cn)
		}
	}
	return groups, nil
}

// IsMember reports whether username belongs to groupName, by
// case-insensitive comparison against the names UserGroups returns (§4.6
// scenario 4: verification membership test is case-insensitive).
func (a *Adapter) IsMember(ctx context.Context, username, groupName string) (_ bool, err error) {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.ObserveQuery("is_member", time.Since(start), err)
		}
	}()

	groups, err := a.UserGroups(ctx, username)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if strings.EqualFold(g, groupName) {
			return true, nil
		}
	}
	return false, nil
}

// GroupRecord is the subset of a directory group entry catalogue sync
// cares about.
type GroupRecord struct {
	Name string
	DN   string
}

// ListAllUsers enumerates every user entry in the configured search scopes,
// used by the catalogue sync's users cadence (§4.9).
func (a *Adapter) ListAllUsers(ctx context.Context) (_ []UserRecord, err error) {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.ObserveQuery("list_all_users", time.Since(start), err)
		}
	}()

	conn, err := a.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	attrs := []string{a.cfg.AttrUsername, a.cfg.AttrMail, a.cfg.AttrDN, "displayName", "userAccountControl"}
	entries, err := a.pagedSearch(conn, a.cfg.UserListFilter, attrs)
	if err != nil {
		return nil, err
	}

	users := make([]UserRecord, 0, len(entries))
	for _, e := range entries {
		username := e.GetAttributeValue(a.cfg.AttrUsername)
		if username == "" {
			continue
		}
		users = append(users, UserRecord{
			Username:    username,
			DN:          dnOrEntry(e, a.cfg.AttrDN),
			Mail:        e.GetAttributeValue(a.cfg.AttrMail),
			DisplayName: e.GetAttributeValue("displayName"),
			Disabled:    isAccountDisabled(e),
		})
	}
	return users, nil
}

// ListAllGroups enumerates every group entry, used by the catalogue sync's
// groups cadence (§4.9).
func (a *Adapter) ListAllGroups(ctx context.Context) (_ []GroupRecord, err error) {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.ObserveQuery("list_all_groups", time.Since(start), err)
		}
	}()

	conn, err := a.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entries, err := a.pagedSearch(conn, a.cfg.GroupListFilter, []string{"cn", a.cfg.AttrDN})
	if err != nil {
		return nil, err
	}

	groups := make([]GroupRecord, 0, len(entries))
	for _, e := range entries {
		name := e.GetAttributeValue("cn")
		if name == "" {
			continue
		}
		groups = append(groups, GroupRecord{Name: name, DN: dnOrEntry(e, a.cfg.AttrDN)})
	}
	return groups, nil
}

func dnOrEntry(e *ldap.Entry, attr string) string {
	if v := e.GetAttributeValue(attr); v != "" {
		return v
	}
	return e.DN
}

func isAccountDisabled(e *ldap.Entry) bool {
	raw := e.GetAttributeValue("userAccountControl")
	if raw == "" {
		return false
	}
	var uac int
	if _, err := fmt.Sscanf(raw, "%d", &uac); err != nil {
		return false
	}
	return uac&userAccountControlDisabled != 0
}
