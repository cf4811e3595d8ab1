/*
Package langdef converts textual grammar description to grammar.Grammar structure.

Grammar is described using a yacc-like language. Self-definition of this language is:
*/
//  $space = /[ \r\n\t\f]+/; $comment = /#[^\n]*/;
//  $char = /'(?:[^\\']|\\.|\\x[0-9a-fA-F]{2})'/;
//  $name = /[a-zA-Z_$][a-zA-Z_0-9]*/;
//  $directive = /%(?:left|right|nonassoc|prec|start)\b/;
//  $mid-action = /@[a-zA-Z_][a-zA-Z_0-9]*/;
//  $action = /=>/;
//  $op = /[:|;]/;
//
//  langdef = {directive}, rule, {rule};
//  directive = assoc-directive | start-directive;
//  assoc-directive = ('%left' | '%right' | '%nonassoc'), symbol, {symbol}, ';';
//  start-directive = '%start', $name, ';';
//  rule = $name, ':', variant, {'|', variant}, ';';
//  variant = {symbol | $mid-action}, ['%prec', symbol], ['=>', $name];
//  symbol = $name | $char;
/*
Description must be a valid UTF-8 text. Line comments start with # and end with line feed.

Names are resolved against token registry first, a name unknown to the registry is a nonterminal
and must be defined by a rule. Quoted chars ('+', '\n', '\x1b') denote single-character terminals.

Each precedence directive opens a new precedence level, later levels bind tighter.

Rule without final action gets the default one: its value is the value of the first symbol
or nothing if the rule is empty. %prec sets the terminal which precedence is used for the rule
instead of the last terminal.

Mid-rule action @name creates an empty nonterminal reduced at that point,
the action sees all values of preceding symbols of the rule.

First rule defines start nonterminal unless %start directive is used.
*/
package langdef
