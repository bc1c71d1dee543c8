package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/tokenizer"
)

// TokensCmd represents the tokens command
type TokensCmd struct {
	Expression string `arg:"" help:"Expression fragment to tokenize"`
	Format     string `help:"Output format" default:"text" enum:"text,yaml"`
	OutputFile string `short:"o" long:"output" help:"Output file (defaults to stdout)" type:"path"`
}

// tokenDump is the YAML projection of one token.
type tokenDump struct {
	Type   string `yaml:"type"`
	Value  string `yaml:"value"`
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
}

func (c *TokensCmd) Run(ctx *Context) error {
	if ctx.Verbose {
		color.Blue("Tokenizing %q", c.Expression)
	}

	tokens, err := tokenizer.New(c.Expression).AllTokens()
	if err != nil {
		color.Red("%v", err)
		return templex.ErrParseFailed
	}

	w, done, outErr := output(c.OutputFile)
	if outErr != nil {
		return outErr
	}
	defer done()

	return c.write(w, tokens)
}

func (c *TokensCmd) write(w io.Writer, tokens []tokenizer.Token) error {
	if c.Format == "yaml" {
		dumps := make([]tokenDump, 0, len(tokens))
		for _, tok := range tokens {
			dumps = append(dumps, tokenDump{
				Type:   tok.Type.String(),
				Value:  tok.Value,
				Line:   tok.Start.Line,
				Column: tok.Start.Column,
			})
		}

		return writeYAML(w, dumps)
	}

	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Start.Line, tok.Start.Column, tok.Type, tok.Value); err != nil {
			return err
		}
	}

	return nil
}
