package testutil

import (
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ValueString renders a cty value as its JSON form, the same rendering the
// CLI prints. Tests compare against these strings instead of constructing
// cty values by hand.
func ValueString(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	out, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.Type().FriendlyName()
	}
	return string(out)
}
