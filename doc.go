package neurarrow

// Package neurarrow provides:
//
// - A closed column type model (TypeTag) and a table view (Columns + ordered Metadata)
// - Composable format declarations (FormatSchema) built by extending a parent format
// - A conformance checker (Check) with Lenient/Strict/Skip modes
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put helpers under internal/.
// - Built-in formats live under formats/, validators under rules/, metadata nesting under
//   metacodec/, the Arrow adapter under arrowtable/ and the CLI under cmd/neurarrow.
// - Checks are pure: no I/O, no logging, deterministic issue order.
//
// Typical usage:
//
//	sch, _ := arrowtable.ReadIPCFileSchema("skeleton.arrow")
//	err := neurarrow.Check(arrowtable.View(sch), formats.Skeletons, neurarrow.ModeStrict)
//	if iss, ok := neurarrow.AsIssues(err); ok {
//		for _, it := range iss {
//			fmt.Println(it.Path, it.Code)
//		}
//	}
