// Package ofx encodes accepted canonical statements as OFX documents, either
// OFX 2 XML or OFX 1 SGML. Field limits follow the OFX spec: NAME is
// truncated at a word boundary with the overflow moved into MEMO, and BANKID
// is clipped to nine characters.
package ofx
