package addr

import (
	"testing"

	"github.com/rsms/go-testutil"
)

func TestParseEquality(t *testing.T) {
	assert := testutil.NewAssert(t)
	a, err := Parse("ip1:1")
	assert.Ok("parse ok", err == nil)
	b, err := New("ip1", "1")
	assert.Ok("new ok", err == nil)
	assert.Ok("equal", a.Equal(b))

	c, err := NewPort("ip1", 1)
	assert.Ok("newport ok", err == nil)
	assert.Ok("equal to numeric port", a.Equal(c))
}

func TestAddrUtilityScenario(t *testing.T) {
	// spec.md §8 scenario 5
	assert := testutil.NewAssert(t)

	list, err := AddBack(nil, "ip1:1", "ip2:2", "ip3:3")
	assert.Ok("add-back 1 ok", err == nil)

	list, err = AddFront(list, "ip2:2")
	assert.Ok("add-front ok", err == nil)

	list, err = AddBack(list, "ip3:3", "ip6:6")
	assert.Ok("add-back 2 ok", err == nil)

	assert.Eq("length", len(list), 4)
	want := []string{"ip2:2", "ip1:1", "ip3:3", "ip6:6"}
	for i, w := range want {
		assert.Eq("entry", list[i].String(), w)
	}
}

func TestAddFrontNoopWhenAlreadyHead(t *testing.T) {
	assert := testutil.NewAssert(t)
	list, _ := AddBack(nil, "ip1:1", "ip2:2")
	list2, err := AddFront(list, "ip1:1")
	assert.Ok("no error", err == nil)
	assert.Eq("length unchanged", len(list2), len(list))
	assert.Eq("head unchanged", list2[0].String(), "ip1:1")
}

func TestRemove(t *testing.T) {
	assert := testutil.NewAssert(t)
	list, _ := AddBack(nil, "ip1:1", "ip2:2", "ip3:3")
	list, err := Remove(list, "ip2:2")
	assert.Ok("no error", err == nil)
	assert.Eq("length", len(list), 2)
	for _, a := range list {
		assert.Ok("ip2 gone", a.String() != "ip2:2")
	}
}

func TestAddBackNoDuplicates(t *testing.T) {
	assert := testutil.NewAssert(t)
	list, _ := AddBack(nil, "ip1:1")
	list, err := AddBack(list, "ip1:1", "ip1:01", "ip2:2")
	assert.Ok("no error", err == nil)
	assert.Eq("length", len(list), 2)
}

func TestCleanDedupesPreservingFirstMetadata(t *testing.T) {
	assert := testutil.NewAssert(t)
	a1 := Addr{Host: "ip1", Port: 1, Name: "first"}
	a2 := Addr{Host: "ip1", Port: 1, Name: "second"}
	out := Clean(map[string][]Addr{"m": {a1, a2}})
	assert.Eq("dedup length", len(out["m"]), 1)
	assert.Eq("keeps first metadata", out["m"][0].Name, "first")
}
