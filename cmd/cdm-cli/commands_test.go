package main

import (
	"testing"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestParseMessage(t *testing.T) {
	m, err := parseMessage(cli.Args{"1234", "5678", "50", "-123345567"})
	require.NoError(t, err)
	require.Equal(t, cdm.Message{
		Object1ID:            1234,
		Object2ID:            5678,
		CollisionProbability: 50,
		TimeOfClosestPass:    -123345567,
	}, m)

	_, err = parseMessage(cli.Args{"1", "2", "3"})
	require.Error(t, err)

	_, err = parseMessage(cli.Args{"1", "2", "3", "2147483648"})
	require.Error(t, err)

	_, err = parseMessage(cli.Args{"1", "2", "x", "4"})
	require.Error(t, err)
}

func TestParseIdentity(t *testing.T) {
	h := util.Uint160{1, 2, 3, 4, 5}

	res, err := parseIdentity(address.Uint160ToString(h))
	require.NoError(t, err)
	require.Equal(t, h, res)

	res, err = parseIdentity(h.StringLE())
	require.NoError(t, err)
	require.Equal(t, h, res)

	res, err = parseIdentity("0x" + h.StringLE())
	require.NoError(t, err)
	require.Equal(t, h, res)

	_, err = parseIdentity("")
	require.Error(t, err)

	_, err = parseIdentity("not an identity")
	require.Error(t, err)
}
