// Package ctsrange resolves citation labels of classical texts against a
// Canonical Text Services (CTS) reference endpoint and validates start/end
// text ranges.
//
// Child references are discovered lazily, one level at a time, and cached in
// process for the lifetime of the Client. An optional Redis or Valkey store
// shares fetched reference lists between processes.
//
//	client, _ := ctsrange.New("https://example.org/mc/api/v1.0/validReff",
//	    ctsrange.WithValkey("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	caesar := ctsrange.Corpus{
//	    ID:             "caesar-bg",
//	    URN:            "urn:cts:latinLit:phi0448.phi001.perseus-lat2",
//	    CitationLevels: []string{"book", "chapter", "section"},
//	}
//	_ = client.Open(ctx, caesar)
//	chapters, _ := client.Children(ctx, caesar, "1")
//	v, _ := client.Validate(ctx, caesar, []string{"1", "1", "1"}, []string{"1", "2", "5"})
//
// A range whose labels cannot be resolved because the reference endpoint
// fails is reported as valid with Verdict.Verified set to false.
package ctsrange
