// Package catalog loads resource declarations written in HCL and turns them
// into registry nodes, derived values and body class rules.
//
// A catalog is a set of .hcl files containing these blocks, in any order and
// spread over any number of files:
//
//	strings { no_matches = "No tags found" }
//
//	derived "thousand_separator" {
//	  value = thousand_fallback(option("price_decimal_sep"), option("price_thousand_sep"))
//	}
//
//	param_set "search" { ajax_url = option("ajax_url") }
//
//	script "wcv-tag-search" {
//	  src    = "${base_url}assets/js/tags${suffix}.js"
//	  deps   = ["jquery", "select2"]
//	  footer = true
//	  when   = is_page("dashboard") && logged_in
//	  object = "wcv_tag_search_params"
//	  params {
//	    from      = ["search"]
//	    separator = select2_separator(option("wcvendors_tag_separator"))
//	  }
//	}
//
//	body_class {
//	  when    = logged_in
//	  classes = ["wcvendors-pro-dashboard"]
//	}
//
// Attributes fall into two groups. src, deps, footer, version, media, object
// and provided are evaluated once at load time and may only use base_url,
// suffix, version, strings and the pure functions. when, params, derived
// values, param sets and body classes are evaluated on every resolution and
// may additionally use page, page_id, logged_in and the functions that read
// the request context (option, option_bool, option_value, option_is_page,
// flag, query, derived, is_page).
//
// Every request-time expression is dry-run against an empty context while
// loading, so type errors surface at startup. An expression that still fails
// during resolution panics.
package catalog
