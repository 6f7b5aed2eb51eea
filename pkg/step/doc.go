// Package step serializes a model snapshot to an ISO 10303-21 (STEP)
// exchange file using IFC entity keywords.
//
// # Output
//
// A file has a HEADER section (description, file name, timestamp, author,
// organization, tool tags, schema) and a DATA section. The DATA section
// starts with the project entity at handle #1, followed by one entity per
// element in registration order at handles #2 through #N+1:
//
//	ISO-10303-21;
//	HEADER;
//	FILE_DESCRIPTION(('IFC model generated by bimtower'), 'IFC4');
//	...
//	ENDSEC;
//	DATA;
//	#1=IFCPROJECT('0b5f...', $, 'Demo', $, $, $, $, $, $);
//	#2=IFCSITE('site', $, 'Site', $, $, $, $, $, $, $, 0, 0, 0, $);
//	#3=IFCWALL('w1', $, 'North wall', $, $, 0, 0, 0, 3, 4, 0.2, $);
//	ENDSEC;
//	END-ISO-10303-21;
//
// Each kind has a fixed argument list. Missing dimensions come from
// [geometry.Defaults], a missing name falls back to the kind name, and
// arguments with no value at all are written as the unset marker "$".
// Unknown kinds are written as IFCBUILDINGELEMENTPROXY carrying the raw
// type string.
//
// Export never fails because of missing data; the only error source is the
// destination writer.
package step
