/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fixtures_test.go
Description: Model and diagnostics texts shared by the model package tests.
*/

package model_test

var variables = []string{"x1", "x2", "x3", "x4"}

// twoRuleModel has one committee, a threshold rule and a subset rule. x3 carries
// a zero coefficient and x4 is never referenced.
const twoRuleModel = `id="Cubist 2.07 GPL Edition 2024-01-01"
prec="2" globalmean="3.5" extrap="1" insts="1" nn="1" maxd="2.25" ceiling="12" floor="1"
att="x1" mean="3" sd="1.58" min="1" max="5"
entries="1"
rules="2"
conds="1" cover="3" mean="2.5" loval="2" hival="3" esterr="0.5"
type="2" att="x1" cut="3" result="<"
coeff="1.5" att="x1" coeff="0.75"
conds="1" cover="2" mean="4.5" loval="4" hival="5" esterr="0.25"
type="3" att="x2" elts="a","b\,c"
coeff="4" att="x3" coeff="0" att="x1" coeff="-0.125"
`

// committeeModel has two committees of one rule each
const committeeModel = `id="Cubist 2.07 GPL Edition 2024-01-01"
prec="2" globalmean="3.5" extrap="1" insts="0"
entries="2"
rules="1"
conds="0" cover="5" mean="3.5" loval="1" hival="6" esterr="1"
coeff="3.5"
rules="1"
conds="1" cover="4" mean="3" loval="1" hival="5" esterr="0.8"
type="2" att="x1" cut="4.5" result=">"
coeff="-1" att="x4" coeff="2"
`

// reservedModel is a training result for a schema whose weight column used the
// reserved engine name
const reservedModel = `id="Cubist 2.07 GPL Edition 2024-01-01"
prec="2" globalmean="2" extrap="1" insts="1" nn="1" maxd="1.5"
__Sample="case weight" lo="0.5" hi="1"
entries="1"
rules="1"
conds="0" cover="3" mean="2" loval="1" hival="3" esterr="0.5"
coeff="2" att="x1" coeff="0.5"
`

const reservedDiagnostics = `Cubist [Release 2.07 GPL Edition]

    Target attribute ` + "`outcome'" + `
    Case weights: __Sample

Read 3 cases (3 attributes) from model.data
`

const usageDiagnostics = `Cubist [Release 2.07 GPL Edition]

Model:

  Rule 1: [3 cases, mean 2.5, range 2 to 3, est err 0.5]

Evaluation on training data (5 cases):

    Average  |error|               0.4

    Attribute usage:
    Conds  Model

    100%   100%    x1
     50%           x2
               50%    x3

Time: 0.0 secs
`

// collidingModel is a weighted training result whose feature names contain both
// the display label and the entries marker
const collidingModel = `id="Cubist 2.07 GPL Edition 2024-01-01"
prec="2" globalmean="2" extrap="1" insts="1" nn="1" maxd="1.5"
att="subsample_rate" mean="0.5" sd="0.2" min="0.1" max="0.9"
att="num_entries" mean="4" sd="2" min="1" max="9"
__Sample="case weight" lo="0.5" hi="1"
entries="1"
rules="1"
conds="1" cover="3" mean="2" loval="1" hival="3" esterr="0.5"
type="2" att="num_entries" cut="4" result=">"
coeff="2" att="num_entries" coeff="0.5" att="subsample_rate" coeff="-1"
`
