/*
Package assetid provides the identifier type for frontend resources.

An identifier is the handle a script or style is registered under, e.g.
`wcv-frontend-product` or `jquery-ui-core`. Handles are opaque to the engine
apart from their syntax, which this package enforces so that catalog typos
surface at registration time instead of as dangling dependencies later.
*/
package assetid
