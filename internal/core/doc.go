// Package core turns spreadsheet rows into contacts and contacts into
// vCard text or PDF report lines.
//
// It has no HTTP dependencies and is shared by the web server and the
// vcfconv command.
//
// # Pipeline
//
//	table.Loader -> Resolve -> Project -> VCards | BuildReport
//
// [Resolve] combines the caller's [FieldMapping] and [PhoneDescriptor] list
// into a [ResolvedMapping]. [Project] applies it to one row and yields a
// [Contact]. Lookups never fail: an unmapped field, an unknown column and a
// blank cell all produce "".
//
// Contacts arriving as JSON for the PDF report are decoded as
// [ReportContact] and converted with [FromReport]; spreadsheet contacts go
// the other way with [ToReport].
//
// # Error Handling
//
// Caller mistakes are returned as [*Error] values of kind [KindBadRequest].
// [MapError] turns any error into a [UserMessage] with a support code:
//
//   - REQ001-REQ003: missing or malformed request input
//   - MAP001-MAP002: mapping and phone descriptor JSON
//   - FILE001-FILE005: upload size, encoding and format
//   - PDF001-PDF002: report input and rendering
//   - CONV001-CONV003: admission control and deadlines
//   - RATE001: per-client throttling in the web layer
package core
