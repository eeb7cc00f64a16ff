// Package model defines the data structures shared by the dependency,
// analyzer, analysis, database and report packages.
//
// The main types are:
//   - DependencyKey: the identity of an external data source
//   - AnalysisResult: the display payload produced by one analyzer
//   - AnalysisReport: the immutable output of one analysis run
//   - DNSRecord, WhoisRecord, Nameserver, CertificateInfo, HTTPResponse,
//     Geolocation: the data fetched by each dependency
//
// Models live in their own package so that dependencies, analyzers and
// writers can share them without import cycles. All of them serialize to
// JSON for report output and history storage.
package model
