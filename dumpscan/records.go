// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  records.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"fmt"
	"time"
)

// MEDIAWIKI STUB HISTORY RECORDS

// Page identifies the article that a revision belongs to
type Page struct {
	Title        string
	NS           int
	ID           int
	Redirect     string
	Restrictions string
}

// Contributor is either a registered account (Username and ID) or an
// anonymous editor (IP). Both are empty when the contributor was deleted.
type Contributor struct {
	Username string
	ID       int
	IP       string
	Deleted  bool
}

// TextReference locates the revision body, which stub dumps do not include
type TextReference struct {
	ID    int
	Bytes int
}

// Revision is one complete edit, with a snapshot of its page taken when the
// revision element closed
type Revision struct {
	ID          int
	ParentID    int
	Timestamp   time.Time
	Contributor Contributor
	Minor       bool
	Comment     string
	Text        TextReference
	SHA1        string
	Model       string
	Format      string
	Page        Page
}

// Author returns the username, or the IP address for anonymous edits
func (c *Contributor) Author() string {

	if c.Username != "" {
		return c.Username
	}

	return c.IP
}

// fieldTypeError reports a converter that produced the wrong type for a field
func fieldTypeError(record, field string, value any) error {
	return fmt.Errorf("%s field %s cannot hold %T", record, field, value)
}

func assignString(record, field string, dst *string, value any) error {

	str, ok := value.(string)
	if !ok {
		return fieldTypeError(record, field, value)
	}
	*dst = str

	return nil
}

func assignInt(record, field string, dst *int, value any) error {

	num, ok := value.(int)
	if !ok {
		return fieldTypeError(record, field, value)
	}
	*dst = num

	return nil
}

// SetField assigns page fields by element name
func (p *Page) SetField(field string, value any) error {

	switch field {
	case "title":
		return assignString("page", field, &p.Title, value)
	case "ns":
		return assignInt("page", field, &p.NS, value)
	case "id":
		return assignInt("page", field, &p.ID, value)
	case "redirect":
		return assignString("page", field, &p.Redirect, value)
	case "restrictions":
		return assignString("page", field, &p.Restrictions, value)
	}

	return fmt.Errorf("page has no field %s", field)
}

// SetField assigns contributor fields by element name
func (c *Contributor) SetField(field string, value any) error {

	switch field {
	case "username":
		return assignString("contributor", field, &c.Username, value)
	case "id":
		return assignInt("contributor", field, &c.ID, value)
	case "ip":
		return assignString("contributor", field, &c.IP, value)
	}

	return fmt.Errorf("contributor has no field %s", field)
}

// SetField assigns text reference fields by attribute name
func (t *TextReference) SetField(field string, value any) error {

	switch field {
	case "id":
		return assignInt("text", field, &t.ID, value)
	case "bytes":
		return assignInt("text", field, &t.Bytes, value)
	}

	return fmt.Errorf("text has no field %s", field)
}

// SetField assigns revision fields by element name
func (r *Revision) SetField(field string, value any) error {

	switch field {
	case "id":
		return assignInt("revision", field, &r.ID, value)
	case "parentid":
		return assignInt("revision", field, &r.ParentID, value)
	case "timestamp":
		tm, ok := value.(time.Time)
		if !ok {
			return fieldTypeError("revision", field, value)
		}
		r.Timestamp = tm
		return nil
	case "comment":
		return assignString("revision", field, &r.Comment, value)
	case "sha1":
		return assignString("revision", field, &r.SHA1, value)
	case "model":
		return assignString("revision", field, &r.Model, value)
	case "format":
		return assignString("revision", field, &r.Format, value)
	}

	return fmt.Errorf("revision has no field %s", field)
}
