package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
)

func TestFilterFmt_EscapesInjectionCharacters(t *testing.T) {
	t.Parallel()

	got := filterFmt("(&(objectClass=user)(sAMAccountName=%s))", "alice)(objectClass=*")
	assert.NotContains(t, got, "*))")
	assert.Contains(t, got, `\29\28objectClass=\2a`)
}

func TestDnOrEntry_PrefersAttributeThenFallsBackToEntryDN(t *testing.T) {
	t.Parallel()

	withAttr := ldap.NewEntry("cn=alice,ou=users,dc=example", map[string][]string{
		"distinguishedName": {"cn=alice,ou=users,dc=example,override"},
	})
	assert.Equal(t, "cn=alice,ou=users,dc=example,override", dnOrEntry(withAttr, "distinguishedName"))

	withoutAttr := ldap.NewEntry("cn=bob,ou=users,dc=example", map[string][]string{})
	assert.Equal(t, "cn=bob,ou=users,dc=example", dnOrEntry(withoutAttr, "distinguishedName"))
}

func TestIsAccountDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uac  string
		want bool
	}{
		{"unset", "", false},
		{"enabled normal account", "512", false},
		{"disabled normal account", "514", true},
		{"garbage value", "not-a-number", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attrs := map[string][]string{}
			if tt.uac != "" {
				attrs["userAccountControl"] = []string{tt.uac}
			}
			e := ldap.NewEntry("cn=x", attrs)
			assert.Equal(t, tt.want, isAccountDisabled(e))
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Parallel()

	c := &Config{}
	c.applyDefaults()
	assert.Equal(t, "sAMAccountName", c.AttrUsername)
	assert.Equal(t, "mail", c.AttrMail)
	assert.Equal(t, "distinguishedName", c.AttrDN)
	assert.Equal(t, "(objectClass=user)", c.UserListFilter)
	assert.Equal(t, "(objectClass=group)", c.GroupListFilter)
}

func TestConfig_ApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	t.Parallel()

	c := &Config{AttrUsername: "uid"}
	c.applyDefaults()
	assert.Equal(t, "uid", c.AttrUsername)
}

func TestConfig_SearchScopes(t *testing.T) {
	t.Parallel()

	c := &Config{BaseDN: "dc=example,dc=com"}
	assert.Equal(t, []string{"dc=example,dc=com"}, c.searchScopes())

	c.SearchDNs = []string{"ou=a,dc=example,dc=com", "ou=b,dc=example,dc=com"}
	assert.Equal(t, c.SearchDNs, c.searchScopes())
}
