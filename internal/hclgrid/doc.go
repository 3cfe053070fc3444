// Package hclgrid loads task-graph declarations from HCL files and feeds
// them through the registry into the graph core.
//
// A grid file declares steps and their data accesses:
//
//	step "fetch" {
//	    create "payload" { type = "http.response" }
//	}
//
//	step "parse" {
//	    read "payload" { type = "http.response" }
//	    create "doc" { type = "json.document" }
//	    depends_on = ["fetch"]
//	    trust      = "high"
//	}
//
//	step "cleanup" {
//	    destroy "payload" { type = "http.response" }
//	}
//
// Fields naming the same datum label are linked as one datum at load time.
// An alias block declares that two differently named labels are the same
// datum, and a seed block pre-loads a typed value for a datum into the
// cell bank handed to the scheduler.
package hclgrid
