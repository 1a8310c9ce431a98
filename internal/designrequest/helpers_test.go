package designrequest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// mustApply applies path/value pairs given as alternating strings and raw JSON.
func mustApply(t *testing.T, d *Draft, pairs ...string) {
	t.Helper()
	require.True(t, len(pairs)%2 == 0, "pairs must be even")
	ops := make([]Op, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		ops = append(ops, Op{Path: pairs[i], Value: json.RawMessage(pairs[i+1])})
	}
	require.NoError(t, Apply(d, ops))
}

func hostedImage(url string) string {
	return `{"name":"x.png","url":"` + url + `"}`
}

func pendingImage(name string) string {
	return `{"name":"` + name + `","content_type":"image/png","size":42}`
}

// regularBoyNewDraft is a submittable new-design draft for a regular boy uniform.
func regularBoyNewDraft(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft("head@school.edu", testNow)
	mustApply(t, d,
		"design_name", `"Spring 2026"`,
		"logo", pendingImage("logo.png"),
		"regular.selected", `true`,
		"regular.genders.boy", `true`,
		"regular.boy.shirt.fabric_id", `3`,
		"regular.boy.shirt.logo_position", `"Left Chest"`,
		"regular.boy.shirt.color", `"#112233"`,
		"regular.boy.pants.fabric_id", `5`,
	)
	return d
}

// importShirtFields fills every import-only shirt field for a gender.
func importShirtFields(t *testing.T, d *Draft, prefix string) {
	t.Helper()
	mustApply(t, d,
		prefix+".fabric_id", `7`,
		prefix+".logo_position", `"Center Chest"`,
		prefix+".front_design", pendingImage("front.png"),
		prefix+".back_design", pendingImage("back.png"),
		prefix+".logo_height", `"4.5"`,
		prefix+".logo_width", `3`,
		prefix+".attaching_technique", `"embroidery"`,
		prefix+".button.quantity", `"6"`,
		prefix+".button.hole_count", `4`,
		prefix+".button.length", `"1.2"`,
		prefix+".button.width", `"1.2"`,
		prefix+".button.color", `"white"`,
	)
}
