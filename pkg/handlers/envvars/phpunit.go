package envvars

import (
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

const defaultXMLIndent = "\n        "

func xmlMarkers(pkg string) (string, string) {
	return " ###+ " + pkg + " ### ", " ###- " + pkg + " ### "
}

func readPhpunit(ctx handlers.Context, file string) (*etree.Document, *etree.Element, error) {
	data, err := afero.ReadFile(ctx.FS, file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", file).
			WithDetail("path", file)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot parse %s", file).
			WithDetail("path", file)
	}
	return doc, doc.FindElement("/phpunit/php"), nil
}

func writePhpunit(ctx handlers.Context, file string, doc *etree.Document) error {
	out, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot encode %s", file)
	}
	if err := filesystem.WriteFileAtomic(ctx.FS, file, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", file).
			WithDetail("path", file)
	}
	ctx.Logger.Debug().Str("path", file).Msg("Updated")
	return nil
}

// configurePhpunit replaces the package's <env> block inside <php>. Files
// without a <php> section are left alone.
func configurePhpunit(ctx handlers.Context, file string, vars []manifest.EnvVar) error {
	doc, php, err := readPhpunit(ctx, file)
	if err != nil {
		return err
	}
	if php == nil {
		ctx.Logger.Debug().Str("path", file).Msg("No <php> section")
		return nil
	}

	removeXMLBlock(php, ctx.Package)

	indent := childIndent(php)
	idx := len(php.Child)
	for idx > 0 && isWhitespace(php.Child[idx-1]) {
		idx--
	}
	if idx == len(php.Child) {
		php.AddChild(etree.NewCharData(closingIndent(indent)))
	}

	start, end := xmlMarkers(ctx.Package)
	tokens := []etree.Token{etree.NewComment(start)}
	for _, v := range vars {
		if v.IsComment() {
			tokens = append(tokens, etree.NewComment(" "+v.Value+" "))
			continue
		}
		env := etree.NewElement("env")
		env.CreateAttr("name", v.Name)
		env.CreateAttr("value", v.Value)
		tokens = append(tokens, env)
	}
	tokens = append(tokens, etree.NewComment(end))

	for _, tok := range tokens {
		php.InsertChildAt(idx, etree.NewCharData(indent))
		php.InsertChildAt(idx+1, tok)
		idx += 2
	}
	return writePhpunit(ctx, file, doc)
}

func unconfigurePhpunit(ctx handlers.Context, file string) error {
	doc, php, err := readPhpunit(ctx, file)
	if err != nil {
		return err
	}
	if php == nil || !removeXMLBlock(php, ctx.Package) {
		return nil
	}
	return writePhpunit(ctx, file, doc)
}

// removeXMLBlock drops the package's comment-delimited block, with the
// whitespace in front of it
func removeXMLBlock(php *etree.Element, pkg string) bool {
	start, end := xmlMarkers(pkg)
	first, last := -1, -1
	for i, tok := range php.Child {
		c, ok := tok.(*etree.Comment)
		if !ok {
			continue
		}
		data := strings.TrimSpace(c.Data)
		if first < 0 && data == strings.TrimSpace(start) {
			first = i
		}
		if first >= 0 && data == strings.TrimSpace(end) {
			last = i
			break
		}
	}
	if first < 0 || last < 0 {
		return false
	}
	if first > 0 && isWhitespace(php.Child[first-1]) {
		first--
	}
	for i := last; i >= first; i-- {
		php.RemoveChildAt(i)
	}
	return true
}

func childIndent(e *etree.Element) string {
	for i, tok := range e.Child {
		if _, ok := tok.(*etree.Element); ok && i > 0 {
			if cd, ok := e.Child[i-1].(*etree.CharData); ok && cd.IsWhitespace() && strings.Contains(cd.Data, "\n") {
				return cd.Data[strings.LastIndex(cd.Data, "\n"):]
			}
		}
	}
	return defaultXMLIndent
}

func closingIndent(indent string) string {
	if len(indent) > 5 {
		return indent[:len(indent)-4]
	}
	return "\n"
}

func isWhitespace(tok etree.Token) bool {
	cd, ok := tok.(*etree.CharData)
	return ok && cd.IsWhitespace()
}
