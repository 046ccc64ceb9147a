// Package xmldoc converts XML documents to and from ir nodes using the
// conventions of xmltodict: attributes become "@name" entries, element
// text becomes "#text", repeated children become arrays and empty
// elements become null.
//
// For example
//
//	<a x="1"><b>t</b><b/></a>
//
// decodes as
//
//	{"a": {"@x": "1", "b": ["t", null]}}
package xmldoc
